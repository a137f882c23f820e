package sync

import (
	"context"
)

// Signal is an external condition observed by the cancel listener.
type Signal int

const (
	SignalUserCancel Signal = iota
	SignalBatteryLow
	SignalBatteryOkay
	SignalPowerConnected
	SignalPowerDisconnected
	SignalConnectivityLost
	SignalConnectivityRestored
)

func (s Signal) String() string {
	switch s {
	case SignalUserCancel:
		return "user_cancel"
	case SignalBatteryLow:
		return "battery_low"
	case SignalBatteryOkay:
		return "battery_okay"
	case SignalPowerConnected:
		return "power_connected"
	case SignalPowerDisconnected:
		return "power_disconnected"
	case SignalConnectivityLost:
		return "connectivity_lost"
	case SignalConnectivityRestored:
		return "connectivity_restored"
	default:
		return "unknown"
	}
}

// ListenForCancellations drains the signal channel and maps qualifying
// signals to a single CancelSync call. Power and connectivity signals only
// cancel when the matching preference restricts syncing to that condition;
// anything else is logged and explicitly does not cancel. Blocks until ctx
// is done or the channel closes.
func (c *Coordinator) ListenForCancellations(ctx context.Context, signals <-chan Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			c.handleSignal(sig)
		}
	}
}

func (c *Coordinator) handleSignal(sig Signal) {
	switch sig {
	case SignalUserCancel:
		c.CancelSync("cancelled at user request")
	case SignalBatteryLow:
		c.CancelSync("battery low")
	case SignalPowerDisconnected:
		if c.prefs != nil && c.prefs.Get().SyncOnlyCharging {
			c.CancelSync("power disconnected while sync requires charging")
			return
		}
		coordLogger.Debug("SIGNAL_IGNORED", map[string]any{
			"signal": sig.String(),
		})
	case SignalConnectivityLost:
		if c.prefs != nil && c.prefs.Get().SyncOnlyWifi {
			c.CancelSync("connectivity lost while sync requires Wi-Fi")
			return
		}
		coordLogger.Debug("SIGNAL_IGNORED", map[string]any{
			"signal": sig.String(),
		})
	default:
		coordLogger.Debug("SIGNAL_IGNORED", map[string]any{
			"signal": sig.String(),
		})
	}
}
