package accounts

// SimpleConfig is a value based Config implementation for hosts that do not
// bring their own configuration layer.
type SimpleConfig struct {
	SigningKey        string   `json:"signing_key"`
	SigningMethod     string   `json:"signing_method"`
	ContextKey        string   `json:"context_key"`
	TokenExpiration   int      `json:"token_expiration"`
	AuthScheme        string   `json:"auth_scheme"`
	Issuer            string   `json:"issuer"`
	Audience          []string `json:"audience"`
	ActivationBaseURL string   `json:"activation_base_url"`
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "profile"
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetAudience() []string { return c.Audience }

func (c *SimpleConfig) GetActivationBaseURL() string { return c.ActivationBaseURL }
