package predictor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/cardiocare/internal/adapters/predictor"
	"github.com/okian/cardiocare/internal/domain/intake"
	. "github.com/smartystreets/goconvey/convey"
)

func payload(extra map[intake.Field]string) intake.Payload {
	var m intake.Metrics
	values := map[intake.Field]string{
		intake.FieldAge: "52.7", intake.FieldGender: "1", intake.FieldHeight: "168.4",
		intake.FieldWeight: "74.9", intake.FieldSystolic: "130", intake.FieldDiastolic: "85",
		intake.FieldCholesterol: "2", intake.FieldGlucose: "1", intake.FieldSmoke: "1",
		intake.FieldAlcohol: "0", intake.FieldActive: "1",
	}
	for f, v := range extra {
		values[f] = v
	}
	for f, v := range values {
		if err := m.Set(f, v); err != nil {
			panic(err)
		}
	}
	return intake.Payload{
		ID:          1_772_000_000_123,
		SubmittedAt: time.Date(2026, 2, 25, 23, 30, 0, 0, time.UTC),
		Metrics:     m,
	}
}

func kindOf(err error) intake.ErrorKind {
	var pe *intake.PredictionError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func reasonOf(err error) string {
	var pe *intake.PredictionError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

func TestBuildRequest(t *testing.T) {
	Convey("Given a client with a default country", t, func() {
		c := predictor.New(predictor.WithDefaultCountry("India"))

		Convey("When free-text fields are empty", func() {
			req, err := c.BuildRequest(payload(nil))

			Convey("Then defaults are filled and numbers truncated", func() {
				So(err, ShouldBeNil)
				So(req.Country, ShouldEqual, "India")
				So(req.Occupation, ShouldEqual, "Not specified")
				So(req.Age, ShouldEqual, 52)
				So(req.Height, ShouldEqual, 168)
				So(req.Weight, ShouldEqual, 74)
				So(req.APHi, ShouldEqual, 130)
				So(req.APLo, ShouldEqual, 85)
				So(req.Date, ShouldEqual, "2026-02-25")
				So(req.ID, ShouldEqual, int64(1_772_000_000_123))
			})
		})

		Convey("When free-text fields are set", func() {
			req, _ := c.BuildRequest(payload(map[intake.Field]string{
				intake.FieldCountry: "Ghana", intake.FieldOccupation: "nurse",
			}))

			Convey("Then they are sent as entered", func() {
				So(req.Country, ShouldEqual, "Ghana")
				So(req.Occupation, ShouldEqual, "nurse")
			})
		})

		Convey("When a required field is missing", func() {
			p := payload(nil)
			_ = p.Metrics.Set(intake.FieldGlucose, "")
			_, err := c.BuildRequest(p)

			Convey("Then the payload is refused", func() {
				var verr *intake.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Missing, ShouldResemble, []intake.Field{intake.FieldGlucose})
			})
		})
	})

	Convey("The wire body uses the service's keys", t, func() {
		req, _ := predictor.New().BuildRequest(payload(nil))
		b, err := json.Marshal(req)
		So(err, ShouldBeNil)
		var keys map[string]any
		So(json.Unmarshal(b, &keys), ShouldBeNil)
		for _, k := range []string{"date", "country", "id", "active", "age", "alco", "ap_hi", "ap_lo",
			"cholesterol", "gender", "gluc", "height", "occupation", "smoke", "weight"} {
			So(keys, ShouldContainKey, k)
		}
		So(keys, ShouldHaveLength, 15)
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a prediction service", t, func() {
		var (
			status  = http.StatusOK
			body    = `{"prediction": 1, "message": "High risk of cardiovascular disease", "features_used": {}}`
			gotBody []byte
			gotCT   string
			calls   int
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
		Reset(srv.Close)

		c := predictor.New(predictor.WithURL(srv.URL + "/predict"))
		ctx := context.Background()

		Convey("When it answers with a prediction", func() {
			pred, err := c.Predict(ctx, payload(nil))

			Convey("Then flag and message are surfaced unchanged", func() {
				So(err, ShouldBeNil)
				So(pred.Flag, ShouldEqual, 1)
				So(pred.Message, ShouldEqual, "High risk of cardiovascular disease")
				So(gotCT, ShouldEqual, "application/json")
				var sent predictor.Request
				So(json.Unmarshal(gotBody, &sent), ShouldBeNil)
				So(sent.Age, ShouldEqual, 52)
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When it answers 200 with an error field", func() {
			body = `{"error": "Model not loaded"}`
			_, err := c.Predict(ctx, payload(nil))

			Convey("Then it is a service error carrying the server message", func() {
				So(kindOf(err), ShouldEqual, intake.KindService)
				So(reasonOf(err), ShouldEqual, "Model not loaded")
				So(errors.Is(err, predictor.ErrServiceReported), ShouldBeTrue)
			})
		})

		Convey("When it answers non-2xx with an error field", func() {
			status = http.StatusBadRequest
			body = `{"error": "Missing required field: ap_hi"}`
			_, err := c.Predict(ctx, payload(nil))

			Convey("Then the server message is passed through", func() {
				So(kindOf(err), ShouldEqual, intake.KindService)
				So(reasonOf(err), ShouldEqual, "Missing required field: ap_hi")
				So(errors.Is(err, predictor.ErrUnexpectedStatus), ShouldBeTrue)
			})
		})

		Convey("When it answers non-2xx without a body", func() {
			status = http.StatusBadGateway
			body = `<html>bad gateway</html>`
			_, err := c.Predict(ctx, payload(nil))

			Convey("Then the generic reason is used", func() {
				So(kindOf(err), ShouldEqual, intake.KindService)
				So(reasonOf(err), ShouldEqual, intake.GenericFailure)
			})
		})

		Convey("When it answers 2xx with a malformed body", func() {
			body = `{"prediction": "yes"`
			_, err := c.Predict(ctx, payload(nil))

			Convey("Then it is a service error with the generic reason", func() {
				So(kindOf(err), ShouldEqual, intake.KindService)
				So(reasonOf(err), ShouldEqual, intake.GenericFailure)
				So(errors.Is(err, predictor.ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("When it answers 2xx without a prediction flag", func() {
			body = `{"message": "ok"}`
			_, err := c.Predict(ctx, payload(nil))

			Convey("Then the body is treated as malformed", func() {
				So(errors.Is(err, predictor.ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("When the payload is incomplete", func() {
			p := payload(nil)
			_ = p.Metrics.Set(intake.FieldAge, "")
			_, err := c.Predict(ctx, p)

			Convey("Then no request is sent", func() {
				So(kindOf(err), ShouldEqual, intake.KindValidation)
				So(calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an unreachable endpoint", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := predictor.New(predictor.WithURL(url))

		Convey("Then the failure is a transport error with the generic reason", func() {
			_, err := c.Predict(context.Background(), payload(nil))
			So(kindOf(err), ShouldEqual, intake.KindTransport)
			So(reasonOf(err), ShouldEqual, intake.GenericFailure)
			So(predictor.IsTransport(err), ShouldBeTrue)
		})
	})

	Convey("Given a slow endpoint and a client timeout", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		Reset(func() {
			close(release)
			srv.Close()
		})
		c := predictor.New(predictor.WithURL(srv.URL), predictor.WithTimeout(20*time.Millisecond))

		Convey("Then the call fails as a transport error", func() {
			_, err := c.Predict(context.Background(), payload(nil))
			So(predictor.IsTransport(err), ShouldBeTrue)
		})
	})
}
