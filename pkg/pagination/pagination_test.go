package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestLimitClamps(t *testing.T) {
	cases := map[string]int{
		"":          DefaultLimit,
		"limit=5":   5,
		"limit=500": MaxLimit,
		"limit=-3":  DefaultLimit,
		"limit=abc": DefaultLimit,
	}
	for query, expected := range cases {
		if got := Limit(contextWithQuery(query)); got != expected {
			t.Fatalf("%q: expected %d, got %d", query, expected, got)
		}
	}
}

func TestExtractAndMetadata(t *testing.T) {
	params := Extract(contextWithQuery("page=3&limit=10"))
	if params.Skip != 20 {
		t.Fatalf("expected skip 20, got %d", params.Skip)
	}

	meta := MetadataFrom(45, params)
	if meta.TotalPages != 5 || !meta.HasNextPage || !meta.HasPrevPage {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}
