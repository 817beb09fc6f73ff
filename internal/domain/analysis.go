package domain

import (
	"slices"
	"strings"
)

// CaseTypes lists the selectable case types, in display order
var CaseTypes = []string{
	"Labour Dispute", "Land Reform", "BEE Compliance",
	"Family Law", "Criminal Law", "Consumer Protection",
	"Mining Rights", "Customary Law", "Immigration",
	"Contract Law", "Estate Planning",
}

// Jurisdictions lists the selectable courts and provinces, in display order
var Jurisdictions = []string{
	"Constitutional Court", "Supreme Court of Appeal",
	"High Court", "Magistrate's Court",
	"Labour Court", "Land Claims Court",
	"Gauteng", "Western Cape", "KwaZulu-Natal",
	"Eastern Cape", "Limpopo", "Mpumalanga",
}

// Section titles, in the order results are always reported
const (
	SectionFramework = "Framework"
	SectionCaseLaw   = "Case Law"
	SectionProvinces = "Provinces"
	SectionProcess   = "Process"
	SectionLegalAid  = "Legal Aid"
)

// AnalysisSection is one named part of a legal analysis. Prompt holds the
// section's instruction; Content is filled once the section resolves.
type AnalysisSection struct {
	Title   string `json:"title"`
	Prompt  string `json:"-"`
	Content string `json:"content"`
}

// AnalysisSections returns the fixed, ordered section templates
func AnalysisSections() []AnalysisSection {
	return []AnalysisSection{
		{Title: SectionFramework, Prompt: "Identify applicable SA laws and regulations"},
		{Title: SectionCaseLaw, Prompt: "Reference relevant Constitutional Court and High Court decisions"},
		{Title: SectionProvinces, Prompt: "Highlight jurisdiction-specific requirements"},
		{Title: SectionProcess, Prompt: "Outline required forms and court processes"},
		{Title: SectionLegalAid, Prompt: "Suggest legal aid clinics and pro bono services"},
	}
}

// AnalysisRequest carries the user's inputs for one analysis invocation
type AnalysisRequest struct {
	CaseType        string `json:"case_type" validate:"omitempty,case_type"`
	Jurisdiction    string `json:"jurisdiction" validate:"omitempty,jurisdiction"`
	LegalQuestion   string `json:"legal_question" validate:"max=8000"`
	InvolvedParties string `json:"involved_parties" validate:"max=4000"`
	ExistingDocs    string `json:"existing_docs" validate:"max=4000"`
}

// DefaultAnalysisRequest is the form state after a clear: first case type,
// first jurisdiction, empty free text.
func DefaultAnalysisRequest() AnalysisRequest {
	return AnalysisRequest{
		CaseType:     CaseTypes[0],
		Jurisdiction: Jurisdictions[0],
	}
}

// Normalize trims free-text fields and fills an empty jurisdiction with the
// first option.
func (r AnalysisRequest) Normalize() AnalysisRequest {
	r.CaseType = strings.TrimSpace(r.CaseType)
	r.Jurisdiction = strings.TrimSpace(r.Jurisdiction)
	r.LegalQuestion = strings.TrimSpace(r.LegalQuestion)
	r.InvolvedParties = strings.TrimSpace(r.InvolvedParties)
	r.ExistingDocs = strings.TrimSpace(r.ExistingDocs)
	if r.Jurisdiction == "" {
		r.Jurisdiction = Jurisdictions[0]
	}
	return r
}

// Validate checks the preconditions for dispatch
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.CaseType) == "" || strings.TrimSpace(r.LegalQuestion) == "" {
		return &ValidationError{Message: "please provide at least a legal question and case type"}
	}
	if !IsCaseType(strings.TrimSpace(r.CaseType)) {
		return &ValidationError{Field: "case_type", Message: "unknown case type"}
	}
	if j := strings.TrimSpace(r.Jurisdiction); j != "" && !IsJurisdiction(j) {
		return &ValidationError{Field: "jurisdiction", Message: "unknown jurisdiction"}
	}
	return nil
}

// IsCaseType reports whether s is one of CaseTypes
func IsCaseType(s string) bool {
	return slices.Contains(CaseTypes, s)
}

// IsJurisdiction reports whether s is one of Jurisdictions
func IsJurisdiction(s string) bool {
	return slices.Contains(Jurisdictions, s)
}

// AnalysisState is the analysis panel's session-scoped state
type AnalysisState struct {
	Form            AnalysisRequest   `json:"form"`
	ReportGenerated bool              `json:"report_generated"`
	Sections        []AnalysisSection `json:"sections"`
}

// DefaultAnalysisState returns a cleared analysis panel
func DefaultAnalysisState() AnalysisState {
	return AnalysisState{
		Form:     DefaultAnalysisRequest(),
		Sections: []AnalysisSection{},
	}
}

// AnalysisOptions lists the selector choices
type AnalysisOptions struct {
	CaseTypes     []string `json:"case_types"`
	Jurisdictions []string `json:"jurisdictions"`
	Sections      []string `json:"sections"`
}

// AnalyzeInput is the HTTP body for an analysis invocation
type AnalyzeInput struct {
	AnalysisRequest
	Provider string `json:"provider,omitempty" validate:"omitempty,max=32"`
	Model    string `json:"model,omitempty" validate:"omitempty,max=64"`
}
