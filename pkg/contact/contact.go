// Package contact turns contact form submissions into mail drafts.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// DefaultResetDelay is how long the "submitted" notice stays up.
const DefaultResetDelay = 3 * time.Second

// ErrIncomplete is returned for forms missing a field or with a bad address.
var ErrIncomplete = errors.New("incomplete contact form")

// Form is what a guest fills in.
type Form struct {
	Name     string
	Email    string
	Question string
}

// Validate checks that every field is present and the address parses.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Question) == "" {
		return ErrIncomplete
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return fmt.Errorf("%w: email: %v", ErrIncomplete, err)
	}
	return nil
}

// Subject returns the message subject for the form.
func (f Form) Subject() string {
	return "New Inquiry: Smoky Peaks Cabins - " + f.Name
}

// Body returns the plain text message body for the form.
func (f Form) Body() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nQuestion:\n%s", f.Name, f.Email, f.Question)
}

// Mailto returns a mail client draft link addressed to to.
func (f Form) Mailto(to string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", to, escape(f.Subject()), escape(f.Body()))
}

// escape percent-encodes s the way mail clients expect in mailto links: spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Mailer delivers a message. It is optional: without one, submissions only produce a draft link.
type Mailer interface {
	Send(ctx context.Context, replyTo string, subject string, body string) error
}

// State is a snapshot of the form for rendering.
type State struct {
	Form      Form
	Submitted bool
	Mailto    string
}

// Desk holds one visitor's contact form.
type Desk struct {
	to     string
	delay  time.Duration
	mailer Mailer

	mu     sync.Mutex
	state  State
	seq    int
	timer  *time.Timer
	closed bool
}

// NewDesk returns a form addressed to to. mailer may be nil.
func NewDesk(to string, delay time.Duration, mailer Mailer) *Desk {
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	return &Desk{to: to, delay: delay, mailer: mailer}
}

// Submit records the form as sent and returns its mailto draft. The
// submitted notice and the fields are cleared after the reset delay.
func (d *Desk) Submit(ctx context.Context, f Form) (string, error) {
	if err := f.Validate(); err != nil {
		d.mu.Lock()
		d.state.Form = f
		d.mu.Unlock()
		return "", err
	}

	link := f.Mailto(d.to)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return link, nil
	}
	d.seq++
	seq := d.seq
	d.state = State{Form: f, Submitted: true, Mailto: link}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.reset(seq) })
	d.mu.Unlock()

	if d.mailer != nil {
		if err := d.mailer.Send(ctx, f.Email, f.Subject(), f.Body()); err != nil {
			klog.Errorf("contact delivery for %s failed: %v", f.Email, err)
		} else {
			klog.Infof("contact message from %s delivered", f.Email)
		}
	}
	return link, nil
}

func (d *Desk) reset(seq int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return
	}
	d.state = State{}
	d.timer = nil
}

// State returns the current form state.
func (d *Desk) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Close stops a pending reset.
func (d *Desk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
