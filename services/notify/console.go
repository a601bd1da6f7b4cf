package notifysvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/placement/core"
)

type consoleService struct {
	std        *log.Logger
	from       mail.Address
	subjPrefix string

	mu   sync.Mutex
	sent []core.Notification
}

var _ core.Notifier = (*consoleService)(nil)

// ConsoleService prints notifications instead of delivering them.
type ConsoleService interface {
	core.Notifier
	Sent() []core.Notification
}

func NewConsoleService(std *log.Logger, conf *core.Config) ConsoleService {
	return &consoleService{
		std:        std,
		from:       mail.Address{Name: conf.AppName, Address: "no-reply@placement.local"},
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc *consoleService) Notify(messages ...*core.Notification) {
	for _, msg := range messages {
		go svc.deliver(msg)
	}
}

// Sent returns a copy of every delivered notification.
func (svc *consoleService) Sent() []core.Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.Notification, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *consoleService) deliver(msg *core.Notification) {
	if !(msg.HasRecipients() && msg.HasContent()) {
		return
	}
	if svc.std != nil {
		svc.std.Println(svc.render(*msg))
	}
	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

func (svc *consoleService) render(msg core.Notification) string {
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Body)
	return body.String()
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

type consoleServiceMock struct {
	*consoleService
}

// NewConsoleServiceMock delivers synchronously and prints nothing.
func NewConsoleServiceMock(conf *core.Config) ConsoleService {
	svc := NewConsoleService(nil, conf).(*consoleService)
	return &consoleServiceMock{consoleService: svc}
}

func (svc *consoleServiceMock) Notify(messages ...*core.Notification) {
	for _, msg := range messages {
		// run synchronously
		svc.deliver(msg)
	}
}
