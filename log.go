package hashring

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cryptlink/hashring/hash"
)

// LogTrace returns Trace which writes ring events to the given logger.
// Successful operations are logged at debug level; failures and hash
// collisions are logged as warnings, except corruption which is an error.
func LogTrace(l logrus.FieldLogger) Trace {
	done := func(e *logrus.Entry, msg string) func(error) {
		return func(err error) {
			switch {
			case err == nil:
				e.Debug(msg)
			case errors.Is(err, ErrCorrupted):
				e.WithError(err).Error(msg + " failed")
			default:
				e.WithError(err).Warn(msg + " failed")
			}
		}
	}
	return Trace{
		OnRegister: func(h hash.Hash, w int) func(error) {
			return done(l.WithFields(logrus.Fields{
				"hash":   h.String(),
				"weight": w,
			}), "register node")
		},
		OnRemove: func(h hash.Hash) func(error) {
			return done(l.WithField("hash", h.String()), "remove node")
		},
		OnRebuild: func(info RebuildInfo) {
			l.WithFields(logrus.Fields{
				"entries": info.Entries,
				"nodes":   info.Nodes,
			}).Debug("index rebuilt")
		},
		OnOverwrite: func(key hash.Hash) {
			l.WithField("key", key.String()).Warn("hash collision: ring entry overwritten")
		},
	}
}
