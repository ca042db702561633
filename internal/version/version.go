package version

// Version is the current version of the signal relay.
// This value can be overridden at build time using:
//   go build -ldflags="-X 'github.com/punkzieeee/demo-socketio/internal/version.Version=v1.0.0'"
var Version = "dev"
