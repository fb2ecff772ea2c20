// Package emailsvc provides core.EmailService implementations.
package emailsvc

import (
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

// SentMessages captures every rendered message the console service handled.
// Tests inspect it instead of an inbox.
var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// consoleService renders messages and dumps them to the log instead of
// delivering them. Used in Debug mode and in tests.
type consoleService struct {
	conf          *core.Config
	subjPrefix    string
	disableOutput bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		conf:       conf,
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.conf); err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "rendering email"))
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	svc.dump(*msg)
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

func (svc consoleService) dump(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}
	from := svc.conf.DefaultFromEmail()
	var b strings.Builder
	b.WriteString("\nFrom: " + from.String() + "\n")
	b.WriteString("To: " + joinAddresses(msg.To) + "\n")
	if len(msg.Cc) > 0 {
		b.WriteString("CC: " + joinAddresses(msg.Cc) + "\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("BCC: " + joinAddresses(msg.Bcc) + "\n")
	}
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\n")
	b.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n\n")
	b.WriteString(msg.TextContent + "\n")
	if msg.HTMLContent != "" {
		b.WriteString("(html alternative omitted)\n")
	}
	log.Print(b.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		strs = append(strs, a.String())
	}
	return strings.Join(strs, ", ")
}

// consoleServiceMock sends synchronously so tests can assert on
// SentMessages right after the call.
type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleServiceMock{
		consoleService: consoleService{
			conf:          conf,
			subjPrefix:    "[" + conf.AppName + "] ",
			disableOutput: true,
		},
	}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}
