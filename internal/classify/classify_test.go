package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/mantic/internal/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want types.ClassTag
	}{
		{"src/auth/login.ts", types.ClassCode},
		{"src/auth/login.test.ts", types.ClassTest},
		{"docs/auth.md", types.ClassDocs},
		{"README.md", types.ClassDocs},
		{"package.json", types.ClassConfig},
		{"package-lock.json", types.ClassGenerated},
		{"dist/bundle.js", types.ClassGenerated},
		{"node_modules/foo/index.js", types.ClassGenerated},
		{"src/components/Button.tsx", types.ClassCode},
		{"__tests__/foo.ts", types.ClassTest},
		{"go.mod", types.ClassConfig},
		{"vendor/lib/x.go", types.ClassGenerated},
		{"main.go", types.ClassCode},
		{"src/x.d.ts", types.ClassGenerated},
		{"random.bin", types.ClassOther},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.path))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	p := "src/services/payments.service.ts"
	first := Classify(p)
	second := Classify(p)
	assert.Equal(t, first, second)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical(types.ClassCode))
	assert.True(t, IsCanonical(types.ClassConfig))
	assert.False(t, IsCanonical(types.ClassTest))
	assert.False(t, IsCanonical(types.ClassDocs))
}

func TestCanonicalBasename(t *testing.T) {
	assert.Equal(t, "login.ts", CanonicalBasename("src/auth/login.test.ts"))
	assert.Equal(t, "foo.go", CanonicalBasename("pkg/foo_test.go"))
	assert.Equal(t, "bar.ts", CanonicalBasename("src/bar.ts"))
}

func TestPriorityOrdering(t *testing.T) {
	assert.True(t, Priority(types.ClassCode) > Priority(types.ClassConfig))
	assert.True(t, Priority(types.ClassConfig) > Priority(types.ClassTest))
	assert.True(t, Priority(types.ClassTest) > Priority(types.ClassOther))
	assert.True(t, Priority(types.ClassOther) > Priority(types.ClassDocs))
	assert.True(t, Priority(types.ClassDocs) > Priority(types.ClassGenerated))
}
