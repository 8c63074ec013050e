package bridge

import "github.com/SanjoDeundiak/devmirror/pkg/lib/classify"

// SuccessRules recognise a successful connect verb on stdout.
var SuccessRules = classify.Rules[bool]{
	{Name: "connected", Match: classify.Contains("connected to"), Outcome: true},
	{Name: "already-connected", Match: classify.Contains("already connected"), Outcome: true},
}

// FailureRules derive a readable cause from the combined output of a failed
// connect or disconnect. Order matters.
var FailureRules = classify.Rules[string]{
	{
		Name:    "refused",
		Match:   classify.Contains("connection refused", "refused"),
		Outcome: "Connection refused. Make sure wireless debugging is enabled on the device",
	},
	{
		Name:    "no-route",
		Match:   classify.Contains("no route to host"),
		Outcome: "No route to host. Check that the device is on the same network",
	},
	{
		Name:    "timeout",
		Match:   classify.Contains("timed out", "timeout"),
		Outcome: "Connection timed out",
	},
	{
		Name:    "offline",
		Match:   classify.Contains("offline"),
		Outcome: "Device is offline",
	},
	{
		Name:    "unauthorized",
		Match:   classify.Contains("unauthorized"),
		Outcome: "Device is unauthorized. Accept the debugging prompt on the device",
	},
	{
		Name:    "generic",
		Match:   classify.Contains("failed to connect", "cannot connect", "unable to connect", "error:"),
		Outcome: "Failed to connect to device",
	},
}

const genericFailure = "Unknown device bridge error"
