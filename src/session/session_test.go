package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"screen-region-select/src/config"
	"screen-region-select/src/geometry"
	"screen-region-select/src/singleinstance"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRect() geometry.Rect {
	return geometry.FromPoints(geometry.Point{X: 100, Y: 50}, geometry.Point{X: 10, Y: 10})
}

func TestReportEncode(t *testing.T) {
	r := NewReport(sampleRect(), fixedNow)
	require.NotEmpty(t, r.ID)
	assert.Equal(t, "10,10,90,40", r.Text())
	assert.Equal(t, sampleRect(), r.Rect())

	data, err := r.Encode(config.FormatJSON)
	require.NoError(t, err)
	var fromJSON Report
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, r, fromJSON)

	data, err = r.Encode(config.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "width: 90")

	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, r.Rect(), fromYAML.Rect())

	data, err = r.Encode(config.FormatText)
	require.NoError(t, err)
	assert.Equal(t, "10,10,90,40", string(data))

	_, err = r.Encode("xml")
	assert.ErrorIs(t, err, config.ErrInvalidFormat)
}

func TestReportFractionalBounds(t *testing.T) {
	r := NewReport(geometry.FromPoints(geometry.Point{X: 1.5, Y: 2.5}, geometry.Point{X: 3.2, Y: 4.1}), fixedNow)
	assert.Equal(t, "1,2,3,3", r.Text())
}

func TestStdoutTarget(t *testing.T) {
	var buf bytes.Buffer
	target := StdoutTarget{Writer: &buf, Format: config.FormatText}
	report, err := Deliver(context.Background(), Options{Target: target, Now: func() time.Time { return fixedNow }}, sampleRect())
	require.NoError(t, err)
	assert.Equal(t, "10,10,90,40\n", buf.String())
	assert.Equal(t, fixedNow, report.CommittedAt)
}

type recordingTarget struct {
	got      []Report
	err      error
	failures []error
}

func (r *recordingTarget) OnSelection(_ context.Context, rep Report) error {
	r.got = append(r.got, rep)
	return r.err
}

func (r *recordingTarget) OnFailure(err error) error {
	r.failures = append(r.failures, err)
	return nil
}

func TestMultiTargetJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	a := &recordingTarget{err: errA}
	b := &recordingTarget{}
	multi := MultiTarget{a, b}

	_, err := Deliver(context.Background(), Options{Target: multi}, sampleRect())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1, "later targets still run")
	require.Len(t, a.failures, 1)
	assert.ErrorIs(t, a.failures[0], errA)
	assert.Empty(t, b.failures, "a target that succeeded is not told about another's failure")
}

func TestMultiTargetDelegatedAnsweredOnce(t *testing.T) {
	conn := &fakeConn{}
	multi := MultiTarget{
		&recordingTarget{err: errors.New("clipboard not initialized")},
		DelegatedTarget{Conn: conn, Format: config.FormatText},
	}

	_, err := Deliver(context.Background(), Options{Target: multi}, sampleRect())
	require.Error(t, err)
	assert.Equal(t, "10,10,90,40", conn.success)
	assert.Empty(t, conn.errMsg)
	assert.Equal(t, 1, conn.responses)
}

func TestMultiTargetOnFailureNotifiesAll(t *testing.T) {
	a, b := &recordingTarget{}, &recordingTarget{}
	require.NoError(t, MultiTarget{a, b}.OnFailure(ErrSelectionCancelled))
	assert.Len(t, a.failures, 1)
	assert.Len(t, b.failures, 1)
}

func TestDeliverRequiresTarget(t *testing.T) {
	_, err := Deliver(context.Background(), Options{}, sampleRect())
	assert.Error(t, err)
}

type fakePublisher struct {
	data []byte
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, data []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a deadline")
	}
	f.data = data
	return f.err
}

func TestPublishTarget(t *testing.T) {
	pub := &fakePublisher{}
	_, err := Deliver(context.Background(), Options{Target: PublishTarget{Bus: pub, Format: config.FormatJSON}}, sampleRect())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pub.data), "{"))

	_, err = Deliver(context.Background(), Options{Target: PublishTarget{}}, sampleRect())
	assert.Error(t, err)
}

type fakeConn struct {
	success   string
	errMsg    string
	responses int
}

func (f *fakeConn) Request() singleinstance.Request { return singleinstance.Request{Format: "text"} }
func (f *fakeConn) RespondSuccess(payload string) error {
	f.responses++
	f.success = payload
	return nil
}
func (f *fakeConn) RespondError(msg string) error {
	f.responses++
	f.errMsg = msg
	return nil
}
func (f *fakeConn) Close() error { return nil }

func TestDelegatedTarget(t *testing.T) {
	conn := &fakeConn{}
	_, err := Deliver(context.Background(), Options{Target: DelegatedTarget{Conn: conn, Format: config.FormatText}}, sampleRect())
	require.NoError(t, err)
	assert.Equal(t, "10,10,90,40", conn.success)

	conn = &fakeConn{}
	_, err = Deliver(context.Background(), Options{Target: DelegatedTarget{Conn: conn, Format: "bogus"}}, sampleRect())
	require.Error(t, err)
	assert.Contains(t, conn.errMsg, "invalid output format")

	assert.NoError(t, DelegatedTarget{}.OnFailure(ErrSelectionCancelled))
}
