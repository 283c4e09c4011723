package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/viant/authsession"
	"github.com/viant/authsession/config"
	"github.com/viant/authsession/schema"
	"github.com/viant/authsession/session"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// RunSession restores the session persisted in the cookie jar, runs the
// requested action and prints its outcome to stdout.
func RunSession(args []string) error {
	options := &SessionOptions{}
	if err := parse(options, &options.ClientOptions.ConfigURL, args); err != nil {
		return err
	}
	ctx := context.Background()
	s, err := authsession.NewClient(&options.ClientOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	s.Start(ctx)
	return runAction(ctx, s, options, os.Stdout)
}

func runAction(ctx context.Context, s *session.Session, options *SessionOptions, out io.Writer) error {
	switch options.Action {
	case "login":
		form, err := options.loginForm(ctx)
		if err != nil {
			return err
		}
		if err = s.Login(ctx, form); err != nil {
			return err
		}
	case "register":
		form, err := options.loginForm(ctx)
		if err != nil {
			return err
		}
		if err = s.Register(ctx, &schema.RegisterForm{FirstName: options.FirstName, LastName: options.LastName, Email: form.Email, Password: form.Password}); err != nil {
			return err
		}
	case "logout":
		s.Logout(ctx)
	case "profile":
		profile, err := s.Profile(ctx)
		if err != nil {
			return err
		}
		return write(out, profile)
	case "get":
		if options.Target == "" {
			return fmt.Errorf("target is required for get")
		}
		resp, err := s.HTTPClient().Get(options.Target)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, err = io.Copy(out, resp.Body)
		return err
	}
	return write(out, status(s.State()))
}

// loginForm takes the account credentials from flags, falling back to a
// scy secret.
func (o *SessionOptions) loginForm(ctx context.Context) (*schema.LoginForm, error) {
	form := &schema.LoginForm{Email: o.Email, Password: o.Password}
	if o.SecretURL == "" {
		if form.Email == "" || form.Password == "" {
			return nil, fmt.Errorf("email and password or secret are required")
		}
		return form, nil
	}
	secret, err := scy.New().Load(ctx, scy.NewResource(&cred.Basic{}, o.SecretURL, o.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load secret %v: %w", o.SecretURL, err)
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return nil, fmt.Errorf("unexpected secret type %T", secret.Target)
	}
	if form.Email == "" {
		form.Email = basic.Username
	}
	form.Password = basic.Password
	return form, nil
}

type sessionStatus struct {
	Authenticated bool            `json:"authenticated"`
	User          *schema.Profile `json:"user,omitempty"`
	Expiry        string          `json:"expiry,omitempty"`
}

func status(state session.State) *sessionStatus {
	ret := &sessionStatus{Authenticated: state.Authenticated, User: state.User}
	if state.Credential.HasExpiry() {
		ret.Expiry = state.Credential.Expiry().Format(time.RFC3339)
	}
	return ret
}

func write(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parse reads flags, overlays the config file and environment, then
// reads flags again so that they take precedence.
func parse(options interface{}, configURL *string, args []string) error {
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	if err := config.Load(*configURL, options); err != nil {
		return err
	}
	_, err := flags.ParseArgs(options, args)
	return err
}
