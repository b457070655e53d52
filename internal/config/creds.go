package config

import "fmt"

// APICreds is the CLOB API credential triple. The three fields travel
// together: a partially filled block is a config error, an absent block is
// fine.
type APICreds struct {
	Key        string `yaml:"key"`
	Secret     string `yaml:"secret"`
	Passphrase string `yaml:"passphrase"`
}

func (c *APICreds) UnmarshalYAML(unmarshal func(any) error) error {
	type plain APICreds
	var creds plain
	if err := unmarshal(&creds); err != nil {
		return err
	}

	if (creds.Key == "") != (creds.Secret == "") || (creds.Key == "") != (creds.Passphrase == "") {
		return fmt.Errorf("key, secret and passphrase must all be set together")
	}

	*c = APICreds(creds)
	return nil
}

// IsSet reports whether the credential block was provided.
func (c APICreds) IsSet() bool {
	return c.Key != ""
}
