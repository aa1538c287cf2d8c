package service

import (
	"log/slog"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/internal/optimize"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. By default the service logs through
// spritekit.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithOptimizer sets the optimizer applied to normalized sheets.
// The default leaves sheets as encoded.
func WithOptimizer(o optimize.Optimizer) Option {
	return func(s *Service) {
		if o != nil {
			s.optimizer = o
		}
	}
}

// WithAnalyzer sets the analyzer used for detection and normalization.
// The caller keeps ownership and must close it.
func WithAnalyzer(a *spritekit.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithPublisher sets the receiver of change events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}
