package processor

import "voice-bridge/internal/voicecall/bridge"

type factorySessions struct {
	factory *bridge.Factory
}

// FromFactory exposes a bridge factory as a SessionFactory.
func FromFactory(f *bridge.Factory) SessionFactory {
	return factorySessions{factory: f}
}

func (f factorySessions) NewSession(telephony bridge.MessageConn) CallSession {
	return f.factory.NewSession(telephony)
}
