package filters

// Panel wraps a Spec behind the premium gate. A non-premium panel is
// locked: it produces no filter values and only exposes the
// upgrade-requested signal. Every successful change reports the full
// merged spec through onChange.
type Panel struct {
	premium   bool
	spec      Spec
	onChange  func(Spec)
	onUpgrade func()
}

// NewPanel builds a panel initialized to the default spec. Either
// callback may be nil.
func NewPanel(premium bool, onChange func(Spec), onUpgrade func()) *Panel {
	return &Panel{
		premium:   premium,
		spec:      DefaultSpec(),
		onChange:  onChange,
		onUpgrade: onUpgrade,
	}
}

// Locked reports whether the panel renders the upsell state instead of
// the filter controls.
func (p *Panel) Locked() bool { return !p.premium }

// Unlock flips the premium gate after a completed upgrade.
func (p *Panel) Unlock() { p.premium = true }

// Current returns the active spec. ok is false while the panel is
// locked; a locked panel never produces filter values.
func (p *Panel) Current() (spec Spec, ok bool) {
	if !p.premium {
		return Spec{}, false
	}
	return p.spec, true
}

// Set merges a single field change and reports the full merged spec.
// No-op while locked.
func (p *Panel) Set(field string, value interface{}) {
	if !p.premium {
		return
	}
	p.spec = p.spec.Merge(field, value)
	if p.onChange != nil {
		p.onChange(p.spec)
	}
}

// Clear resets to the default spec and reports it. No-op while locked.
func (p *Panel) Clear() {
	if !p.premium {
		return
	}
	p.spec = DefaultSpec()
	if p.onChange != nil {
		p.onChange(p.spec)
	}
}

// RequestUpgrade fires the upgrade-requested signal. This is the only
// action available on a locked panel.
func (p *Panel) RequestUpgrade() {
	if p.onUpgrade != nil {
		p.onUpgrade()
	}
}
