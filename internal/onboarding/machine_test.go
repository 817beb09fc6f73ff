package onboarding_test

import (
	"testing"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/onboarding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artifact(key string) *domain.Artifact {
	return &domain.Artifact{Key: key, Filename: key + ".pdf", ContentType: "application/pdf", Size: 128}
}

func ptr[T any](v T) *T { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		form        domain.OnboardingForm
		state       domain.OnboardingState
		canComplete bool
	}{
		{
			name:  "nothing chosen",
			form:  domain.OnboardingForm{},
			state: domain.StateAwaitingSignatureMethod,
		},
		{
			name:  "docs without method",
			form:  domain.OnboardingForm{IdentityDocument: artifact("id"), ProofOfResidence: artifact("por")},
			state: domain.StateAwaitingSignatureMethod,
		},
		{
			name:  "e-sign without confirmation",
			form:  domain.OnboardingForm{Method: domain.SignatureElectronic, TypedSignature: "John Doe"},
			state: domain.StateESigning,
		},
		{
			name:  "e-sign confirmation without name",
			form:  domain.OnboardingForm{Method: domain.SignatureElectronic, Confirmed: true},
			state: domain.StateESigning,
		},
		{
			name:  "e-sign blank name",
			form:  domain.OnboardingForm{Method: domain.SignatureElectronic, TypedSignature: "   ", Confirmed: true},
			state: domain.StateESigning,
		},
		{
			name:  "upload without scan",
			form:  domain.OnboardingForm{Method: domain.SignatureUpload},
			state: domain.StateUploadingScan,
		},
		{
			name:  "upload with empty scan",
			form:  domain.OnboardingForm{Method: domain.SignatureUpload, SignedMandate: &domain.Artifact{Key: "k"}},
			state: domain.StateUploadingScan,
		},
		{
			name:  "e-sign satisfied no docs",
			form:  domain.OnboardingForm{Method: domain.SignatureElectronic, TypedSignature: "John Doe", Confirmed: true},
			state: domain.StateSignatureSatisfied,
		},
		{
			name: "scan satisfied with id only",
			form: domain.OnboardingForm{
				Method:           domain.SignatureUpload,
				SignedMandate:    artifact("mandate"),
				IdentityDocument: artifact("id"),
			},
			state: domain.StateAwaitingIdentityDocs,
		},
		{
			name: "scan satisfied with proof only",
			form: domain.OnboardingForm{
				Method:           domain.SignatureUpload,
				SignedMandate:    artifact("mandate"),
				ProofOfResidence: artifact("por"),
			},
			state: domain.StateAwaitingIdentityDocs,
		},
		{
			name: "everything via e-sign",
			form: domain.OnboardingForm{
				Method:           domain.SignatureElectronic,
				TypedSignature:   "Jane Smith",
				Confirmed:        true,
				IdentityDocument: artifact("id"),
				ProofOfResidence: artifact("por"),
			},
			state:       domain.StateDocsSatisfied,
			canComplete: true,
		},
		{
			name: "everything via upload",
			form: domain.OnboardingForm{
				Method:           domain.SignatureUpload,
				SignedMandate:    artifact("mandate"),
				IdentityDocument: artifact("id"),
				ProofOfResidence: artifact("por"),
			},
			state:       domain.StateDocsSatisfied,
			canComplete: true,
		},
		{
			name: "scan present but e-sign selected and unsigned",
			form: domain.OnboardingForm{
				Method:           domain.SignatureElectronic,
				SignedMandate:    artifact("mandate"),
				IdentityDocument: artifact("id"),
				ProofOfResidence: artifact("por"),
			},
			state: domain.StateESigning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := onboarding.Evaluate(tt.form)
			assert.Equal(t, tt.state, p.State)
			assert.Equal(t, tt.canComplete, p.CanComplete)
			if tt.canComplete {
				assert.Empty(t, p.Missing)
			} else {
				assert.NotEmpty(t, p.Missing)
			}
		})
	}
}

func TestApply_OrderIndependent(t *testing.T) {
	steps := map[string]domain.OnboardingSubmission{
		"method": {Method: ptr(domain.SignatureElectronic)},
		"sign":   {TypedSignature: ptr("John Doe"), Confirmed: ptr(true)},
		"id":     {Artifacts: map[domain.ArtifactKind]*domain.Artifact{domain.ArtifactIdentityDocument: artifact("id")}},
		"proof":  {Artifacts: map[domain.ArtifactKind]*domain.Artifact{domain.ArtifactProofOfResidence: artifact("por")}},
	}

	orders := [][]string{
		{"method", "sign", "id", "proof"},
		{"proof", "id", "sign", "method"},
		{"id", "method", "proof", "sign"},
		{"sign", "proof", "method", "id"},
	}

	for _, order := range orders {
		form := domain.OnboardingForm{}
		for i, step := range order {
			var err error
			form, err = onboarding.Apply(form, steps[step])
			require.NoError(t, err)

			complete := onboarding.Evaluate(form).CanComplete
			if i < len(order)-1 {
				assert.False(t, complete, "order %v completed early after %q", order, step)
			} else {
				assert.True(t, complete, "order %v should complete", order)
			}
		}
	}
}

func TestApply_SingleSubmission(t *testing.T) {
	form, err := onboarding.Apply(domain.OnboardingForm{}, domain.OnboardingSubmission{
		Method: ptr(domain.SignatureUpload),
		Artifacts: map[domain.ArtifactKind]*domain.Artifact{
			domain.ArtifactSignedMandate:    artifact("mandate"),
			domain.ArtifactIdentityDocument: artifact("id"),
			domain.ArtifactProofOfResidence: artifact("por"),
		},
	})
	require.NoError(t, err)
	assert.True(t, onboarding.Evaluate(form).CanComplete)
}

func TestApply_SwitchMethodWithoutPenalty(t *testing.T) {
	form := domain.OnboardingForm{
		Method:           domain.SignatureUpload,
		IdentityDocument: artifact("id"),
		ProofOfResidence: artifact("por"),
	}
	assert.Equal(t, domain.StateUploadingScan, onboarding.Evaluate(form).State)

	form, err := onboarding.Apply(form, domain.OnboardingSubmission{
		Method:         ptr(domain.SignatureElectronic),
		TypedSignature: ptr("John Doe"),
		Confirmed:      ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, onboarding.Evaluate(form).CanComplete)
}

func TestApply_RemoveArtifact(t *testing.T) {
	form := domain.OnboardingForm{
		Method:           domain.SignatureElectronic,
		TypedSignature:   "John Doe",
		Confirmed:        true,
		IdentityDocument: artifact("id"),
		ProofOfResidence: artifact("por"),
	}
	require.True(t, onboarding.Evaluate(form).CanComplete)

	next, err := onboarding.Apply(form, domain.OnboardingSubmission{Remove: []domain.ArtifactKind{domain.ArtifactProofOfResidence}})
	require.NoError(t, err)

	assert.False(t, onboarding.Evaluate(next).CanComplete)
	assert.NotNil(t, form.ProofOfResidence, "input snapshot must not be modified")
}

func TestApply_UnconfirmingRegresses(t *testing.T) {
	form := domain.OnboardingForm{Method: domain.SignatureElectronic, TypedSignature: "John Doe", Confirmed: true}
	require.True(t, onboarding.SignatureSatisfied(form))

	next, err := onboarding.Apply(form, domain.OnboardingSubmission{Confirmed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, onboarding.SignatureSatisfied(next))
}

func TestApply_InvalidMethod(t *testing.T) {
	bad := domain.SignatureMethod("fax")
	_, err := onboarding.Apply(domain.OnboardingForm{}, domain.OnboardingSubmission{Method: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestComplete(t *testing.T) {
	ready := domain.OnboardingForm{
		Method:           domain.SignatureElectronic,
		TypedSignature:   "John Doe",
		Confirmed:        true,
		IdentityDocument: artifact("id"),
		ProofOfResidence: artifact("por"),
	}

	t.Run("issues fresh references", func(t *testing.T) {
		seen := map[uuid.UUID]bool{}
		for i := 0; i < 50; i++ {
			ref, progress, err := onboarding.Complete(ready)
			require.NoError(t, err)
			assert.Equal(t, domain.StateComplete, progress.State)
			assert.Equal(t, uuid.Version(4), ref.Version())

			parsed, err := uuid.Parse(ref.String())
			require.NoError(t, err)
			assert.Equal(t, ref, parsed)

			assert.False(t, seen[ref], "reference reused")
			seen[ref] = true
		}
	})

	t.Run("refuses incomplete snapshot", func(t *testing.T) {
		for _, kind := range domain.ArtifactKinds[1:] {
			form := ready
			form.SetArtifact(kind, nil)
			ref, progress, err := onboarding.Complete(form)
			assert.ErrorIs(t, err, domain.ErrOnboardingIncomplete)
			assert.Equal(t, uuid.Nil, ref)
			assert.Contains(t, progress.Missing, string(kind))
		}

		unsigned := ready
		unsigned.Confirmed = false
		_, _, err := onboarding.Complete(unsigned)
		assert.ErrorIs(t, err, domain.ErrOnboardingIncomplete)
	})
}
