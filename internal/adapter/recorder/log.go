package recorder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/repository"
)

// Log writes study events to a logrus logger.
type Log struct {
	logger logrus.FieldLogger
}

var _ repository.StudyRecorder = (*Log)(nil)

func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{logger: logger.WithField("component", "study_recorder")}
}

func (l *Log) CardStudied(_ context.Context, category entity.Category, difficulty entity.Difficulty) {
	l.logger.WithFields(logrus.Fields{
		"category":   category,
		"difficulty": difficulty,
	}).Debug("card studied")
}

func (l *Log) SessionStats(_ context.Context, stats entity.SessionStats) {
	l.logger.WithFields(logrus.Fields{
		"session":  stats.SessionID,
		"studied":  stats.Studied,
		"passed":   stats.Passed,
		"failed":   stats.Failed,
		"duration": stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second).String(),
		"mastery":  stats.Deck.MasteryPercent,
	}).Info("study session finished")
}
