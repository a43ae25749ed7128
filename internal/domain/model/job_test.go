package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPredictionJob(t *testing.T) {
	Convey("Given a job built from a submission", t, func() {
		s := intake.New()
		_, _ = s.Next()
		_, _ = s.Next()
		for f, v := range map[intake.Field]string{
			"age": "40", "gender": "0", "height": "160", "weight": "60", "ap_hi": "118",
			"ap_lo": "76", "cholesterol": "1", "gluc": "1", "smoke": "0", "alco": "0", "active": "1",
		} {
			_, err := s.Set(f, v)
			So(err, ShouldBeNil)
		}
		sub, err := s.Submit()
		So(err, ShouldBeNil)

		job := model.PredictionJob{SessionID: "abc", Attempt: sub.Attempt, Payload: sub.Payload, EnqueuedAt: time.Now()}

		Convey("Then it carries the attempt and a detached form snapshot", func() {
			So(job.Attempt, ShouldEqual, 1)
			s.Reset()
			age, ok := job.Payload.Metrics.Int(intake.FieldAge)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 40)
		})
	})

	Convey("Outcome reports failure by its error", t, func() {
		So(model.PredictionOutcome{}.Failed(), ShouldBeFalse)
		So(model.PredictionOutcome{Err: errors.New("x")}.Failed(), ShouldBeTrue)
	})
}
