package intake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
	. "github.com/smartystreets/goconvey/convey"
)

type stubPredictor struct {
	calls int
	pred  intake.Prediction
	err   error
	last  intake.Payload
}

func (p *stubPredictor) Predict(_ context.Context, in intake.Payload) (intake.Prediction, error) {
	p.calls++
	p.last = in
	return p.pred, p.err
}

var complete = map[intake.Field]string{
	intake.FieldAge:         "54",
	intake.FieldGender:      "1",
	intake.FieldHeight:      "172",
	intake.FieldWeight:      "81.5",
	intake.FieldSystolic:    "135",
	intake.FieldDiastolic:   "88",
	intake.FieldCholesterol: "2",
	intake.FieldGlucose:     "1",
	intake.FieldSmoke:       "0",
	intake.FieldAlcohol:     "0",
	intake.FieldActive:      "1",
}

func fill(s *intake.Session, skip ...intake.Field) {
	skipped := map[intake.Field]bool{}
	for _, f := range skip {
		skipped[f] = true
	}
	for f, v := range complete {
		if skipped[f] {
			continue
		}
		_, err := s.Set(f, v)
		So(err, ShouldBeNil)
	}
}

func toLastStep(s *intake.Session) {
	_, _ = s.Next()
	_, _ = s.Next()
}

func TestSessionNavigation(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := intake.New()

		Convey("Then it starts on step 1, editing, with the default country", func() {
			st := s.State()
			So(st.Step, ShouldEqual, intake.StepPersonal)
			So(st.Status, ShouldResemble, intake.Editing{})
			So(st.Metrics.Country(), ShouldEqual, "India")
			So(st.Metrics.Missing(), ShouldHaveLength, 11)
		})

		Convey("When navigating with an empty form", func() {
			st1, err1 := s.Next()
			st2, err2 := s.Next()
			st3, _ := s.Next()

			Convey("Then forward moves are unconditional and clamp at 3", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(st1.Step, ShouldEqual, intake.StepHealth)
				So(st2.Step, ShouldEqual, intake.StepLifestyle)
				So(st3.Step, ShouldEqual, intake.StepLifestyle)
			})

			Convey("Then backward moves clamp at 1", func() {
				_, _ = s.Prev()
				_, _ = s.Prev()
				st, err := s.Prev()
				So(err, ShouldBeNil)
				So(st.Step, ShouldEqual, intake.StepPersonal)
			})
		})

		Convey("When submitting before the last step", func() {
			_, err := s.Submit()

			Convey("Then it is rejected", func() {
				So(errors.Is(err, intake.ErrNotFinalStep), ShouldBeTrue)
				So(s.State().Status, ShouldResemble, intake.Editing{})
			})
		})
	})

	Convey("Given a session with a custom default country", t, func() {
		s := intake.New(intake.WithDefaultCountry("Peru"))
		So(s.State().Metrics.Country(), ShouldEqual, "Peru")
	})
}

func TestSessionSet(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := intake.New()

		Convey("When setting an out-of-range value", func() {
			_, _ = s.Set(intake.FieldAge, "40")
			_, err := s.Set(intake.FieldAge, "121")

			Convey("Then it is rejected and the old value is kept", func() {
				var verr *intake.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, intake.FieldAge)
				So(errors.Is(err, intake.ErrInvalidInput), ShouldBeTrue)
				v, ok := s.State().Metrics.Value(intake.FieldAge)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 40)
			})
		})

		Convey("When setting malformed or fractional codes", func() {
			_, errNaN := s.Set(intake.FieldHeight, "tall")
			_, errFrac := s.Set(intake.FieldCholesterol, "1.5")
			_, errFlag := s.Set(intake.FieldSmoke, "2")
			_, errUnknown := s.Set(intake.Field("shoe_size"), "42")

			Convey("Then each is rejected", func() {
				So(errNaN, ShouldNotBeNil)
				So(errFrac, ShouldNotBeNil)
				So(errFlag, ShouldNotBeNil)
				So(errUnknown, ShouldNotBeNil)
				So(s.State().Metrics.Missing(), ShouldHaveLength, 11)
			})
		})

		Convey("When clearing a field with an empty value", func() {
			_, _ = s.Set(intake.FieldWeight, "70")
			_, err := s.Set(intake.FieldWeight, "  ")

			Convey("Then the field becomes empty", func() {
				So(err, ShouldBeNil)
				_, ok := s.State().Metrics.Value(intake.FieldWeight)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When setting range boundaries and free text", func() {
			_, e1 := s.Set(intake.FieldSystolic, "70")
			_, e2 := s.Set(intake.FieldDiastolic, "150")
			_, e3 := s.Set(intake.FieldOccupation, "  nurse ")

			Convey("Then they are accepted", func() {
				So(e1, ShouldBeNil)
				So(e2, ShouldBeNil)
				So(e3, ShouldBeNil)
				So(s.State().Metrics.Occupation(), ShouldEqual, "nurse")
			})
		})

		Convey("Then a snapshot does not alias the session", func() {
			_, _ = s.Set(intake.FieldAge, "30")
			snap := s.State()
			_, _ = s.Set(intake.FieldAge, "31")
			v, _ := snap.Metrics.Value(intake.FieldAge)
			So(v, ShouldEqual, 30)
		})
	})
}

func TestSessionSubmit(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }

	Convey("Given a session on the last step", t, func() {
		s := intake.New(intake.WithClock(clock))
		toLastStep(s)

		Convey("When diastolic is missing", func() {
			fill(s, intake.FieldDiastolic)
			p := &stubPredictor{}
			_, err := s.Run(context.Background(), p)

			Convey("Then no call is made and the session stays on step 3 with a validation error", func() {
				So(p.calls, ShouldEqual, 0)
				var verr *intake.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Missing, ShouldResemble, []intake.Field{intake.FieldDiastolic})

				st := s.State()
				So(st.Step, ShouldEqual, intake.StepLifestyle)
				editing, ok := st.Status.(intake.Editing)
				So(ok, ShouldBeTrue)
				So(editing.Err, ShouldEqual, verr)
			})

			Convey("Then filling the field clears the message", func() {
				st, err := s.Set(intake.FieldDiastolic, "80")
				So(err, ShouldBeNil)
				So(st.Status, ShouldResemble, intake.Editing{})
			})
		})

		Convey("When the form is complete", func() {
			fill(s)
			sub, err := s.Submit()

			Convey("Then the session is submitting with a payload", func() {
				So(err, ShouldBeNil)
				So(sub.Attempt, ShouldEqual, 1)
				So(sub.Payload.ID, ShouldEqual, clock().UnixMilli())
				So(sub.Payload.SubmittedAt, ShouldEqual, clock())
				So(s.State().Status, ShouldResemble, intake.Submitting{Attempt: 1})
			})

			Convey("Then a second submit is rejected while in flight", func() {
				_, err := s.Submit()
				So(errors.Is(err, intake.ErrSubmissionInFlight), ShouldBeTrue)
				_, err = s.Set(intake.FieldAge, "60")
				So(errors.Is(err, intake.ErrSubmissionInFlight), ShouldBeTrue)
				_, err = s.Prev()
				So(errors.Is(err, intake.ErrSubmissionInFlight), ShouldBeTrue)
			})

			Convey("Then a result for another attempt is dropped", func() {
				So(s.Resolve(sub.Attempt+1, intake.Prediction{Flag: 1}, nil), ShouldBeFalse)
				So(s.State().Status, ShouldResemble, intake.Submitting{Attempt: 1})
			})

			Convey("When the prediction succeeds", func() {
				pred := intake.Prediction{Flag: 1, Message: "High risk of cardiovascular disease"}
				So(s.Resolve(sub.Attempt, pred, nil), ShouldBeTrue)

				Convey("Then the session holds the prediction and only accepts reset", func() {
					So(s.State().Status, ShouldResemble, intake.Succeeded{Prediction: pred})
					_, err := s.Set(intake.FieldAge, "60")
					So(errors.Is(err, intake.ErrSessionComplete), ShouldBeTrue)
					_, err = s.Submit()
					So(errors.Is(err, intake.ErrSessionComplete), ShouldBeTrue)
					So(s.Reset(), ShouldResemble, intake.New(intake.WithClock(clock)).State())
				})

				Convey("Then the same attempt cannot be resolved twice", func() {
					So(s.Resolve(sub.Attempt, intake.Prediction{}, errors.New("late")), ShouldBeFalse)
				})
			})

			Convey("When the session is reset while submitting", func() {
				s.Reset()

				Convey("Then the late result is ignored", func() {
					So(s.Resolve(sub.Attempt, intake.Prediction{Flag: 1}, nil), ShouldBeFalse)
					So(s.State(), ShouldResemble, intake.New(intake.WithClock(clock)).State())
				})

				Convey("Then a later attempt gets a fresh number", func() {
					toLastStep(s)
					fill(s)
					next, err := s.Submit()
					So(err, ShouldBeNil)
					So(next.Attempt, ShouldBeGreaterThan, sub.Attempt)
				})
			})
		})
	})

	Convey("Given a complete form and a failing endpoint", t, func() {
		s := intake.New(intake.WithClock(clock))
		toLastStep(s)
		fill(s)
		p := &stubPredictor{err: &intake.PredictionError{Kind: intake.KindTransport, Reason: intake.GenericFailure}}

		Convey("When running the submission", func() {
			st, err := s.Run(context.Background(), p)

			Convey("Then the session fails with a non-empty reason", func() {
				So(err, ShouldNotBeNil)
				failed, ok := st.Status.(intake.Failed)
				So(ok, ShouldBeTrue)
				So(failed.Kind, ShouldEqual, intake.KindTransport)
				So(failed.Reason, ShouldNotBeEmpty)
				So(st.Step, ShouldEqual, intake.StepLifestyle)
			})

			Convey("Then a resubmission is accepted and can succeed", func() {
				p.err = nil
				p.pred = intake.Prediction{Flag: 0, Message: "Low risk"}
				st, err := s.Run(context.Background(), p)
				So(err, ShouldBeNil)
				So(st.Status, ShouldResemble, intake.Succeeded{Prediction: p.pred})
				So(p.calls, ShouldEqual, 2)
				age, _ := p.last.Metrics.Int(intake.FieldAge)
				So(age, ShouldEqual, 54)
			})
		})
	})

	Convey("Given an error of unknown shape", t, func() {
		s := intake.New()
		toLastStep(s)
		fill(s)
		sub, _ := s.Submit()
		s.Resolve(sub.Attempt, intake.Prediction{}, errors.New("dial tcp: refused"))

		Convey("Then it is reported as a transport failure with the generic reason", func() {
			So(s.State().Status, ShouldResemble, intake.Failed{Kind: intake.KindTransport, Reason: intake.GenericFailure})
		})
	})
}

func TestSessionReset(t *testing.T) {
	Convey("Given sessions driven into every state", t, func() {
		fresh := intake.New().State()

		editing := intake.New()
		_, _ = editing.Set(intake.FieldAge, "44")
		_, _ = editing.Next()

		invalid := intake.New()
		toLastStep(invalid)
		_, _ = invalid.Submit()

		submitting := intake.New()
		toLastStep(submitting)
		fill(submitting)
		_, _ = submitting.Submit()

		failed := intake.New()
		toLastStep(failed)
		fill(failed)
		sub, _ := failed.Submit()
		failed.Resolve(sub.Attempt, intake.Prediction{}, errors.New("x"))

		Convey("Then Reset yields the fresh state every time, twice in a row", func() {
			for _, s := range []*intake.Session{editing, invalid, submitting, failed} {
				So(s.Reset(), ShouldResemble, fresh)
				So(s.Reset(), ShouldResemble, fresh)
			}
		})
	})
}

func TestDerived(t *testing.T) {
	Convey("Given a form with height, weight and blood pressure", t, func() {
		s := intake.New()
		_, _ = s.Set(intake.FieldHeight, "175")
		_, _ = s.Set(intake.FieldWeight, "70")
		_, _ = s.Set(intake.FieldSystolic, "135")
		_, _ = s.Set(intake.FieldDiastolic, "70")

		d := s.Derived()

		Convey("Then BMI and categories are computed", func() {
			So(*d.BMI, ShouldEqual, 22.9)
			So(d.BMICategory.Label, ShouldEqual, "Normal")
			So(d.BloodPressure.Label, ShouldEqual, "Stage 1")
		})
	})

	Convey("Given an empty form", t, func() {
		d := intake.New().Derived()
		So(d.BMI, ShouldBeNil)
		So(d.BloodPressure, ShouldBeNil)
	})
}

func TestRecommendations(t *testing.T) {
	Convey("Recommendations differ by prediction", t, func() {
		pos := intake.Recommendations(true)
		neg := intake.Recommendations(false)
		So(pos, ShouldHaveLength, 4)
		So(neg, ShouldHaveLength, 4)
		So(pos[0], ShouldEqual, "Consult with a healthcare provider immediately")
		So(neg[0], ShouldEqual, "Maintain your current healthy lifestyle")
		So(intake.Prediction{Flag: 1}.Positive(), ShouldBeTrue)
	})
}
