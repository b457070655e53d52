package realtime

import "context"

const (
	SubscribeOp   = "subscribe"
	UnsubscribeOp = "unsubscribe"
)

// Creds is the API credential triple for the user channel.
type Creds struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

type typeAnnouncement struct {
	Type string    `json:"type"`
	Auth *wireAuth `json:"auth,omitempty"`
}

// wireAuth carries the credentials under the field names the server expects;
// it wants "apiKey" where the credential itself says "key".
type wireAuth struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

type marketSubscription struct {
	AssetsIDs            []string `json:"assets_ids"`
	Operation            string   `json:"operation"`
	CustomFeatureEnabled *bool    `json:"custom_feature_enabled,omitempty"`
}

type userSubscription struct {
	Markets              []string `json:"markets"`
	Operation            string   `json:"operation"`
	CustomFeatureEnabled *bool    `json:"custom_feature_enabled,omitempty"`
}

// MarketChannel streams order book and trade events for a set of asset ids.
type MarketChannel struct {
	ch *channel
}

func NewMarketChannel(cfg Config) *MarketChannel {
	m := &MarketChannel{}
	m.ch = newChannel(cfg, variant{
		path: MarketChannelPath,
		handshake: func() any {
			return typeAnnouncement{Type: "MARKET"}
		},
		subscribe: func(ids []string, customFeatureEnabled bool) any {
			return marketSubscription{
				AssetsIDs:            ids,
				Operation:            SubscribeOp,
				CustomFeatureEnabled: &customFeatureEnabled,
			}
		},
		unsubscribe: func(ids []string) any {
			return marketSubscription{AssetsIDs: ids, Operation: UnsubscribeOp}
		},
	})
	return m
}

// Connect opens the market channel and subscribes to assetIDs. IDs from a
// previous connection are re-subscribed as well.
func (m *MarketChannel) Connect(ctx context.Context, assetIDs []string, customFeatureEnabled bool) error {
	return m.ch.connect(ctx, assetIDs, customFeatureEnabled)
}

func (m *MarketChannel) Subscribe(assetIDs []string, customFeatureEnabled bool) error {
	if err := m.ch.send(m.ch.variant.subscribe(assetIDs, customFeatureEnabled)); err != nil {
		return err
	}
	m.ch.trackSubscribe(assetIDs)
	return nil
}

func (m *MarketChannel) Unsubscribe(assetIDs []string) error {
	if err := m.ch.send(m.ch.variant.unsubscribe(assetIDs)); err != nil {
		return err
	}
	m.ch.trackUnsubscribe(assetIDs)
	return nil
}

func (m *MarketChannel) Disconnect() {
	m.ch.disconnect()
}

func (m *MarketChannel) IsConnected() bool {
	return m.ch.isConnected()
}

// UserChannel streams order and trade events for the authenticated user's
// markets (condition ids).
type UserChannel struct {
	ch    *channel
	creds Creds
}

func NewUserChannel(cfg Config, creds Creds) *UserChannel {
	u := &UserChannel{creds: creds}
	u.ch = newChannel(cfg, variant{
		path: UserChannelPath,
		handshake: func() any {
			return typeAnnouncement{
				Type: "USER",
				Auth: &wireAuth{
					APIKey:     u.creds.Key,
					Secret:     u.creds.Secret,
					Passphrase: u.creds.Passphrase,
				},
			}
		},
		subscribe: func(ids []string, customFeatureEnabled bool) any {
			return userSubscription{
				Markets:              ids,
				Operation:            SubscribeOp,
				CustomFeatureEnabled: &customFeatureEnabled,
			}
		},
		unsubscribe: func(ids []string) any {
			return userSubscription{Markets: ids, Operation: UnsubscribeOp}
		},
	})
	return u
}

// Connect opens the user channel: the credential announcement is sent before
// any market subscription.
func (u *UserChannel) Connect(ctx context.Context, marketIDs []string, customFeatureEnabled bool) error {
	return u.ch.connect(ctx, marketIDs, customFeatureEnabled)
}

func (u *UserChannel) Subscribe(marketIDs []string, customFeatureEnabled bool) error {
	if err := u.ch.send(u.ch.variant.subscribe(marketIDs, customFeatureEnabled)); err != nil {
		return err
	}
	u.ch.trackSubscribe(marketIDs)
	return nil
}

func (u *UserChannel) Unsubscribe(marketIDs []string) error {
	if err := u.ch.send(u.ch.variant.unsubscribe(marketIDs)); err != nil {
		return err
	}
	u.ch.trackUnsubscribe(marketIDs)
	return nil
}

func (u *UserChannel) Disconnect() {
	u.ch.disconnect()
}

func (u *UserChannel) IsConnected() bool {
	return u.ch.isConnected()
}
