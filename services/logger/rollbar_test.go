package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

func TestRollbarLogger_log(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "test"})
	l.Enable(false)
	defer l.Close()

	usr := user.User{ID: 7, FirstName: "Aysel", LastName: "Quliyeva", Email: "aysel@test.az"}
	l.Error("querying users failed", errors.New("boom"), usr)
	l.Info("server started")

	got := buf.String()
	for _, want := range []string{"querying users failed", "boom", "aysel@test.az", "server started"} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %q; got:\n%s", want, got)
		}
	}
}
