package service

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestService_MonitorAfterDiscard(t *testing.T) {
	Convey("Given a session looked up just before it is discarded", t, func() {
		svc := New(WithMonitorInterval(time.Millisecond))
		ctx := context.Background()
		info, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)

		sess, err := svc.lookup(info.ID)
		So(err, ShouldBeNil)
		So(svc.DiscardSession(ctx, info.ID), ShouldBeNil)

		Convey("When the monitor is started on the stale handle", func() {
			_, err := svc.startMonitor(ctx, sess)

			Convey("Then it refuses and no sampling begins", func() {
				So(err, ShouldEqual, ErrSessionNotFound)
				So(sess.monitor.Measuring(), ShouldBeFalse)
				time.Sleep(10 * time.Millisecond)
				So(sess.monitor.Samples(), ShouldBeEmpty)
			})
		})

		Convey("Then the public monitor calls report the session gone", func() {
			_, err := svc.StartMonitor(ctx, info.ID)
			So(err, ShouldEqual, ErrSessionNotFound)
			_, err = svc.StopMonitor(ctx, info.ID)
			So(err, ShouldEqual, ErrSessionNotFound)
			So(svc.GetStats(ctx)["active_monitors"], ShouldEqual, 0)
		})
	})
}
