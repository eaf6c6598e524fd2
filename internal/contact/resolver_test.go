package contact

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audit-cli/internal/model"
)

func email(value string, source model.ContactSource, conf float64, pageURL string) model.ContactCandidate {
	return model.ContactCandidate{
		Value: value, Kind: model.ContactEmail, Source: source, Confidence: conf, PageURL: pageURL,
	}
}

func phone(value string, source model.ContactSource, conf float64, pageURL string) model.ContactCandidate {
	return model.ContactCandidate{
		Value: value, Kind: model.ContactPhone, Source: source, Confidence: conf, PageURL: pageURL,
	}
}

func TestResolveNoCandidates(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Resolve("https://acme.com", nil))
}

func TestResolveStructuredBeatsText(t *testing.T) {
	t.Parallel()

	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		email("random@gmail.com", model.SourceText, 0.4, "https://acme.com/blog"),
		email("sales@acme.com", model.SourceStructured, 0.9, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "sales@acme.com", resolved.Email)
	assert.Equal(t, model.SourceStructured, resolved.EmailSource)
}

func TestResolveDomainMatchBonus(t *testing.T) {
	t.Parallel()

	// Same source, same page: the address on the site's own domain wins.
	resolved := Resolve("https://www.acme.com", []model.ContactCandidate{
		email("jane@gmail.com", model.SourceMailto, 0.7, "https://acme.com"),
		email("jane@acme.com", model.SourceMailto, 0.7, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "jane@acme.com", resolved.Email)
	assert.InDelta(t, 0.8, resolved.EmailConfidence, 1e-9)
}

func TestResolveContactPageBonus(t *testing.T) {
	t.Parallel()

	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		email("a@other.com", model.SourceMailto, 0.7, "https://acme.com/blog"),
		email("b@other.com", model.SourceMailto, 0.7, "https://acme.com/contact"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "b@other.com", resolved.Email)
}

func TestResolveGenericDownWeighted(t *testing.T) {
	t.Parallel()

	// A named person on the same domain beats the generic inbox.
	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		email("info@acme.com", model.SourceMailto, 0.7, "https://acme.com"),
		email("jane@acme.com", model.SourceMailto, 0.7, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "jane@acme.com", resolved.Email)
}

func TestResolveGenericStillUsable(t *testing.T) {
	t.Parallel()

	// Down-weighted, not excluded: a lone generic inbox still resolves.
	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		email("info@acme.com", model.SourceStructured, 0.9, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "info@acme.com", resolved.Email)
	assert.Greater(t, resolved.EmailConfidence, 0.0)
}

func TestResolvePhoneIndependentOfEmail(t *testing.T) {
	t.Parallel()

	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		phone("+1 555 010 2000", model.SourceStructured, 0.9, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Empty(t, resolved.Email)
	assert.Equal(t, "+1 555 010 2000", resolved.Phone)
	assert.Equal(t, model.SourceStructured, resolved.PhoneSource)
}

func TestResolveOrderIndependent(t *testing.T) {
	t.Parallel()

	candidates := []model.ContactCandidate{
		email("info@acme.com", model.SourceStructured, 0.9, "https://acme.com/contact"),
		email("jane@acme.com", model.SourceMailto, 0.7, "https://acme.com/about"),
		email("zed@acme.com", model.SourceMailto, 0.7, "https://acme.com/about"),
		email("random@gmail.com", model.SourceText, 0.4, "https://acme.com/blog"),
		phone("+1 555 010 2000", model.SourceStructured, 0.9, "https://acme.com"),
		phone("555 010 2001", model.SourceText, 0.4, "https://acme.com"),
	}

	want := Resolve("https://acme.com", candidates)
	require.NotNil(t, want)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := make([]model.ContactCandidate, len(candidates))
		copy(shuffled, candidates)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Resolve("https://acme.com", shuffled))
	}
}

func TestResolveTieBreaksLexicographic(t *testing.T) {
	t.Parallel()

	resolved := Resolve("https://acme.com", []model.ContactCandidate{
		email("zeta@acme.com", model.SourceMailto, 0.7, "https://acme.com"),
		email("alpha@acme.com", model.SourceMailto, 0.7, "https://acme.com"),
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "alpha@acme.com", resolved.Email)
}
