package agri

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Воркер opencensus стартует в init пакета genai.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}
