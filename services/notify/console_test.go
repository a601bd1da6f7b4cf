package notifysvc

import (
	"bytes"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/placement/core"
)

func TestConsoleService_Notify(t *testing.T) {
	conf := &core.Config{AppName: "Placement"}
	to := []mail.Address{{Name: "Jo", Address: "jo@uni.test"}}

	tests := []struct {
		name     string
		msg      core.Notification
		wantSent int
	}{
		{name: "no recipients", msg: core.Notification{Subject: "hi"}, wantSent: 0},
		{name: "no content", msg: core.Notification{To: to, Subject: "  "}, wantSent: 0},
		{name: "delivered", msg: core.Notification{To: to, Subject: "Logbook approved", Body: "Month 1 was approved."}, wantSent: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConsoleServiceMock(conf)
			msg := tt.msg
			svc.Notify(&msg)
			assert.Len(t, svc.Sent(), tt.wantSent)
		})
	}
}

func TestConsoleService_Prints(t *testing.T) {
	var buf bytes.Buffer
	svc := NewConsoleService(log.New(&buf, "", 0), &core.Config{AppName: "Placement"})

	svc.Notify(&core.Notification{
		To:      []mail.Address{{Address: "coordinator@uni.test"}},
		Subject: "Final materials ready",
		Body:    "s1 uploaded everything.",
	})

	assert.Eventually(t, func() bool { return len(svc.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, buf.String(), "Subject: [Placement] Final materials ready")
	assert.Contains(t, buf.String(), "To: <coordinator@uni.test>")
}
