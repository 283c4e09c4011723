package cli

import (
	"github.com/viant/authsession"
)

// SessionOptions are the authsession command flags
type SessionOptions struct {
	authsession.ClientOptions `mapstructure:",squash"`
	Action    string `short:"a" long:"action" description:"action to run" choice:"status" choice:"login" choice:"register" choice:"logout" choice:"profile" choice:"get" default:"status"`
	Email     string `short:"e" long:"email" description:"account email"`
	Password  string `short:"P" long:"password" description:"account password"`
	FirstName string `long:"first-name" description:"first name for register"`
	LastName  string `long:"last-name" description:"last name for register"`
	SecretURL string `long:"secret" description:"scy secret URL holding the account credentials"`
	SecretKey string `short:"k" long:"key" description:"secret encryption key, e.g. blowfish://default"`
	Target    string `short:"t" long:"target" description:"URL fetched by the get action"`
}

// IssuerOptions are the issuer command flags
type IssuerOptions struct {
	authsession.ServerOptions `mapstructure:",squash"`
}
