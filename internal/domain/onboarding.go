package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignatureMethod is how the client signs the fee mandate
type SignatureMethod string

const (
	SignatureNone       SignatureMethod = ""
	SignatureElectronic SignatureMethod = "e_sign"
	SignatureUpload     SignatureMethod = "upload"
)

func (m SignatureMethod) Valid() bool {
	switch m {
	case SignatureNone, SignatureElectronic, SignatureUpload:
		return true
	}
	return false
}

// OnboardingState is derived from the current form snapshot, never stored
type OnboardingState string

const (
	StateAwaitingSignatureMethod OnboardingState = "awaiting_signature_method"
	StateESigning                OnboardingState = "e_signing"
	StateUploadingScan           OnboardingState = "uploading_scan"
	StateSignatureSatisfied      OnboardingState = "signature_satisfied"
	StateAwaitingIdentityDocs    OnboardingState = "awaiting_identity_docs"
	StateDocsSatisfied           OnboardingState = "docs_satisfied"
	StateComplete                OnboardingState = "complete"
)

// ArtifactKind names an onboarding document slot
type ArtifactKind string

const (
	ArtifactSignedMandate    ArtifactKind = "signed_mandate"
	ArtifactIdentityDocument ArtifactKind = "id_document"
	ArtifactProofOfResidence ArtifactKind = "proof_of_residence"
)

// ArtifactKinds lists the document slots in form order
var ArtifactKinds = []ArtifactKind{
	ArtifactSignedMandate,
	ArtifactIdentityDocument,
	ArtifactProofOfResidence,
}

// Artifact is an accepted, stored upload
type Artifact struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// OnboardingForm is the current snapshot of the onboarding inputs
type OnboardingForm struct {
	Method           SignatureMethod `json:"method"`
	TypedSignature   string          `json:"typed_signature"`
	Confirmed        bool            `json:"confirmed"`
	SignedMandate    *Artifact       `json:"signed_mandate,omitempty"`
	IdentityDocument *Artifact       `json:"id_document,omitempty"`
	ProofOfResidence *Artifact       `json:"proof_of_residence,omitempty"`
}

// Artifact returns the artifact in the given slot, or nil
func (f OnboardingForm) Artifact(kind ArtifactKind) *Artifact {
	switch kind {
	case ArtifactSignedMandate:
		return f.SignedMandate
	case ArtifactIdentityDocument:
		return f.IdentityDocument
	case ArtifactProofOfResidence:
		return f.ProofOfResidence
	}
	return nil
}

// SetArtifact replaces the artifact in the given slot; nil clears it
func (f *OnboardingForm) SetArtifact(kind ArtifactKind, a *Artifact) {
	switch kind {
	case ArtifactSignedMandate:
		f.SignedMandate = a
	case ArtifactIdentityDocument:
		f.IdentityDocument = a
	case ArtifactProofOfResidence:
		f.ProofOfResidence = a
	}
}

// OnboardingProgress is the evaluation of a form snapshot
type OnboardingProgress struct {
	State              OnboardingState `json:"state"`
	SignatureSatisfied bool            `json:"signature_satisfied"`
	IdentityDocument   bool            `json:"id_document"`
	ProofOfResidence   bool            `json:"proof_of_residence"`
	CanComplete        bool            `json:"can_complete"`
	Missing            []string        `json:"missing"`
}

// OnboardingSubmission is one form submission. Nil fields leave the current
// value in place.
type OnboardingSubmission struct {
	Method         *SignatureMethod
	TypedSignature *string
	Confirmed      *bool
	Artifacts      map[ArtifactKind]*Artifact
	Remove         []ArtifactKind
}

// ArtifactUpload is a raw file received for a document slot
type ArtifactUpload struct {
	Kind     ArtifactKind
	Filename string
	Data     []byte
}

// OnboardingView is returned by the onboarding endpoints
type OnboardingView struct {
	Client   ClientProfile      `json:"client"`
	Form     OnboardingForm     `json:"form"`
	Progress OnboardingProgress `json:"progress"`
}

// OnboardingCompletion is returned once onboarding has been recorded
type OnboardingCompletion struct {
	ReferenceID uuid.UUID          `json:"reference_id"`
	Progress    OnboardingProgress `json:"progress"`
	CompletedAt time.Time          `json:"completed_at"`
}

// OnboardingRecord documents a completed onboarding
type OnboardingRecord struct {
	ReferenceID     uuid.UUID         `json:"reference_id"`
	ClientID        string            `json:"-"`
	SignatureMethod SignatureMethod   `json:"signature_method"`
	TypedSignature  string            `json:"-"`
	Artifacts       map[string]string `json:"-"`
	CompletedAt     time.Time         `json:"completed_at"`
}

// OnboardingRecordRepository persists completed onboardings
type OnboardingRecordRepository interface {
	Create(ctx context.Context, record *OnboardingRecord) error
}
