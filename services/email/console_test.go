package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/azedu/quizdesk/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:         "QuizDesk",
		DefaultFromName: "QuizDesk",
		DefaultFromAddr: "noreply@quizdesk.test",
	}
}

func Test_consoleService_dump(t *testing.T) {
	conf := testConfig()
	svc := consoleService{conf: conf, subjPrefix: "[" + conf.AppName + "] "}

	var buf bytes.Buffer
	out := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(out)

	svc.dump(core.EmailMessage{
		To:          []mail.Address{{Name: "John Doe", Address: "john@test.az"}},
		Subject:     "Password reset",
		TextContent: "your code is 123456",
	})

	got := buf.String()
	for _, want := range []string{
		`From: "QuizDesk" <noreply@quizdesk.test>`,
		`To: "John Doe" <john@test.az>`,
		"Subject: [QuizDesk] Password reset",
		"your code is 123456",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump output missing %q; got:\n%s", want, got)
		}
	}
}

func Test_consoleServiceMock_capturesMessages(t *testing.T) {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()

	svc := NewConsoleServiceMock(testConfig())
	svc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: "john@test.az"}},
		Subject: "Hello",
		BodyStr: "hi",
	})

	if len(SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(SentMessages))
	}
	if SentMessages[0].TextContent != "hi" {
		t.Errorf("TextContent = %q; want %q", SentMessages[0].TextContent, "hi")
	}
}
