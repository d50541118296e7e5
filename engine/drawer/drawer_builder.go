package drawer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// DrawerBuilderOption is a functional option for configuring a Drawer via NewDrawer.
type DrawerBuilderOption func(*drawer)

// WithTheme is an option builder that sets the initial theme.
//
// Parameters:
//   - th: the theme
//
// Returns:
//   - DrawerBuilderOption: a function that applies the theme option to a drawer
func WithTheme(th theme.Theme) DrawerBuilderOption {
	return func(d *drawer) {
		d.theme = th
	}
}

// WithWorkers sets how many goroutines rasterize labels in batch generation. One or less
// rasterizes on the calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - DrawerBuilderOption: a function that applies the worker option to a drawer
func WithWorkers(n int) DrawerBuilderOption {
	return func(d *drawer) {
		d.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DrawerBuilderOption {
	return func(d *drawer) {
		d.logger = logger
	}
}
