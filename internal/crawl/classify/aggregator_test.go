package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout-engine/internal/domain"
)

func TestClassifyBuiltinCards(t *testing.T) {
	html := `<html><body>
		<div data-id="job-card">
			<h2><a href="/job/12345/senior-platform-engineer">Senior Platform Engineer</a></h2>
			<span>Acme · Remote · Posted 2 days ago · Infrastructure team hiring now</span>
		</div>
		<div data-id="job-card">
			<h2><a href="/job/12346/staff-product-designer">Staff Product Designer</a></h2>
		</div>
	</body></html>`

	res := classifyOne(testClassifier(), "https://builtin.com/company/acme/jobs", html)

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "Senior Platform Engineer", res.Candidates[0].Title)
	assert.Equal(t, "https://builtin.com/job/12345/senior-platform-engineer", res.Candidates[0].URL)
	assert.Equal(t, domain.PatternAggregator, res.Candidates[0].SourcePattern)
	assert.Equal(t, domain.PatternAggregator, res.Candidates[1].SourcePattern)
}

func TestClassifyCompanySiteSkipsAggregatorSelectors(t *testing.T) {
	// same markup, but hosted on the company's own domain
	html := `<html><body>
		<div data-id="job-card">
			<h2><a href="/job/12345/senior-platform-engineer">Senior Platform Engineer</a></h2>
		</div>
	</body></html>`

	res := classifyOne(testClassifier(), "https://acme.com/careers", html)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, domain.PatternAnchor, res.Candidates[0].SourcePattern)
}

func TestClassifyLinkedInOnlyCountsJobsPaths(t *testing.T) {
	_, ok := aggregatorRuleFor("https://www.linkedin.com/company/acme/about")
	assert.False(t, ok)

	rule, ok := aggregatorRuleFor("https://www.linkedin.com/jobs/search?keywords=acme")
	require.True(t, ok)
	assert.Equal(t, "linkedin.com", rule.host)
}
