// Package onboarding evaluates the client onboarding wizard.
//
// The wizard has no stored transition history: every submission replaces
// parts of a form snapshot and the current state is recomputed from the
// snapshot alone. A client may therefore switch signature method freely, but
// completion needs the signature, the identity document and the proof of
// residence to be present in the same snapshot.
package onboarding

import (
	"fmt"
	"strings"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/google/uuid"
)

// Evaluate derives the onboarding progress from a form snapshot.
// Only the currently selected signature method is considered.
func Evaluate(form domain.OnboardingForm) domain.OnboardingProgress {
	p := domain.OnboardingProgress{
		SignatureSatisfied: SignatureSatisfied(form),
		IdentityDocument:   present(form.IdentityDocument),
		ProofOfResidence:   present(form.ProofOfResidence),
		Missing:            []string{},
	}

	switch {
	case form.Method == domain.SignatureNone:
		p.State = domain.StateAwaitingSignatureMethod
		p.Missing = append(p.Missing, "signature_method")
	case !p.SignatureSatisfied && form.Method == domain.SignatureElectronic:
		p.State = domain.StateESigning
		if strings.TrimSpace(form.TypedSignature) == "" {
			p.Missing = append(p.Missing, "typed_signature")
		}
		if !form.Confirmed {
			p.Missing = append(p.Missing, "confirmation")
		}
	case !p.SignatureSatisfied:
		p.State = domain.StateUploadingScan
		p.Missing = append(p.Missing, string(domain.ArtifactSignedMandate))
	case !p.IdentityDocument && !p.ProofOfResidence:
		p.State = domain.StateSignatureSatisfied
	case !p.IdentityDocument || !p.ProofOfResidence:
		p.State = domain.StateAwaitingIdentityDocs
	default:
		p.State = domain.StateDocsSatisfied
		p.CanComplete = true
	}

	if !p.IdentityDocument {
		p.Missing = append(p.Missing, string(domain.ArtifactIdentityDocument))
	}
	if !p.ProofOfResidence {
		p.Missing = append(p.Missing, string(domain.ArtifactProofOfResidence))
	}

	return p
}

// SignatureSatisfied reports whether the selected signature path is done.
// E-signing needs a typed signature and the confirmation together.
func SignatureSatisfied(form domain.OnboardingForm) bool {
	switch form.Method {
	case domain.SignatureElectronic:
		return strings.TrimSpace(form.TypedSignature) != "" && form.Confirmed
	case domain.SignatureUpload:
		return present(form.SignedMandate)
	default:
		return false
	}
}

// Apply folds a submission into the current snapshot and returns the new
// snapshot. The input form is not modified.
func Apply(form domain.OnboardingForm, sub domain.OnboardingSubmission) (domain.OnboardingForm, error) {
	next := form

	if sub.Method != nil {
		if !sub.Method.Valid() {
			return form, &domain.ValidationError{Field: "sign_method", Message: fmt.Sprintf("unknown signature method %q", *sub.Method)}
		}
		next.Method = *sub.Method
	}
	if sub.TypedSignature != nil {
		next.TypedSignature = strings.TrimSpace(*sub.TypedSignature)
	}
	if sub.Confirmed != nil {
		next.Confirmed = *sub.Confirmed
	}

	for _, kind := range sub.Remove {
		next.SetArtifact(kind, nil)
	}
	for kind, artifact := range sub.Artifacts {
		if artifact == nil {
			continue
		}
		a := *artifact
		next.SetArtifact(kind, &a)
	}

	return next, nil
}

// Complete checks the completion invariant on the snapshot and issues a
// fresh reference identifier.
func Complete(form domain.OnboardingForm) (uuid.UUID, domain.OnboardingProgress, error) {
	progress := Evaluate(form)
	if !progress.CanComplete {
		return uuid.Nil, progress, &domain.OnboardingIncompleteError{Progress: progress}
	}

	ref, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, progress, fmt.Errorf("failed to generate reference ID: %w", err)
	}

	progress.State = domain.StateComplete
	return ref, progress, nil
}

func present(a *domain.Artifact) bool {
	return a != nil && a.Key != "" && a.Size > 0
}
