package kernel

// SetBackThreshold live-updates the elapsed-seconds threshold Back() uses to
// decide between "restart current track" and "step back n tracks" (spec.md
// §4.1.2, supplemented feature: BackThreshold is updatable at runtime). It
// writes straight through AtomicState — no commit/publish round trip, since
// BackThreshold isn't part of AudioState.
func (k *Actor[Extra]) SetBackThreshold(seconds float64) {
	reply := make(chan struct{})
	k.chBackThreshold <- backThresholdReq{seconds: seconds, reply: reply}
	<-reply
}
