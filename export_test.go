package sharedpool

func (p *Pool[C]) Config() *Config[C] {
	return p.config
}
