package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/mantic/internal/types"
)

func TestAnalyzeEmptyQuery(t *testing.T) {
	result := Analyze("")
	assert.Equal(t, types.IntentGeneral, result.Category)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Keywords)
}

func TestAnalyzeAuthCategory(t *testing.T) {
	result := Analyze("authentication logic")
	assert.Equal(t, types.IntentAuth, result.Category)
	assert.GreaterOrEqual(t, result.Confidence, 0.75)
}

func TestAnalyzePreservesPascalCase(t *testing.T) {
	result := Analyze("ScriptController")
	assert.Contains(t, result.Keywords, "ScriptController")
}

func TestAnalyzePreservesKebabCase(t *testing.T) {
	result := Analyze("user-profile component")
	assert.Contains(t, result.Keywords, "user-profile")
}

func TestAnalyzeGeneralFallback(t *testing.T) {
	result := Analyze("xyzzy plugh")
	assert.Equal(t, types.IntentGeneral, result.Category)
}

func TestAnalyzeDeterministicTieBreak(t *testing.T) {
	a := Analyze("performance styling")
	b := Analyze("performance styling")
	assert.Equal(t, a.Category, b.Category)
}

func TestEntityExtractionComponentNotFound(t *testing.T) {
	result := Analyze("where is ButtonXyzzy defined")
	assert.Contains(t, result.Entities.Components, "ButtonXyzzy")
}

func TestEntityExtractionErrorTokens(t *testing.T) {
	result := Analyze("why do I get NetworkError and code 404")
	assert.Contains(t, result.Entities.Errors, "NetworkError")
	assert.Contains(t, result.Entities.Errors, "404")
}

func TestEntityExtractionClassVsComponent(t *testing.T) {
	result := Analyze("AuthService calls LoginButton")
	assert.Contains(t, result.Entities.Classes, "AuthService")
	assert.Contains(t, result.Entities.Components, "LoginButton")
}

func TestKeywordDedupePreservesFirstSeenOrder(t *testing.T) {
	keywords, _ := extractKeywords("login login signin")
	count := 0
	for _, k := range keywords {
		if k == "login" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
