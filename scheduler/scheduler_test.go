package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/internal/clock"
	"golang.org/x/oauth2"
)

var epoch = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func expiring(at time.Time, generation uint64) *credential.Credential {
	return &credential.Credential{Token: &oauth2.Token{AccessToken: "t", Expiry: at}, Generation: generation}
}

func TestScheduler_FiresLeadBeforeExpiry(t *testing.T) {
	fake := clock.Fake(epoch)
	var fired atomic.Int32
	var firedAt time.Time
	s := New(func() {
		fired.Add(1)
		firedAt = fake.Now()
	}, WithClock(fake))

	expiry := epoch.Add(15 * time.Minute)
	s.Arm(expiring(expiry, 1))
	deadline, ok := s.Deadline()
	require.True(t, ok)
	assert.Equal(t, expiry.Add(-DefaultLead), deadline)

	fake.Advance(12*time.Minute + 59*time.Second)
	assert.EqualValues(t, 0, fired.Load())

	fake.Advance(time.Second)
	assert.EqualValues(t, 1, fired.Load())
	assert.False(t, firedAt.After(expiry.Add(-DefaultLead)))
	_, ok = s.Deadline()
	assert.False(t, ok)
}

func TestScheduler_ArmReplacesPreviousTimer(t *testing.T) {
	fake := clock.Fake(epoch)
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, WithClock(fake), WithLead(time.Minute))

	s.Arm(expiring(epoch.Add(5*time.Minute), 1))
	s.Arm(expiring(epoch.Add(30*time.Minute), 2))
	assert.Equal(t, 1, fake.Pending())

	fake.Advance(10 * time.Minute)
	assert.EqualValues(t, 0, fired.Load())
	fake.Advance(20 * time.Minute)
	assert.EqualValues(t, 1, fired.Load())
}

func TestScheduler_DueCredentialTriggersImmediately(t *testing.T) {
	fake := clock.Fake(epoch)
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, WithClock(fake))

	s.Arm(expiring(epoch.Add(time.Minute), 1))
	assert.EqualValues(t, 1, fired.Load())
	assert.Equal(t, 0, fake.Pending())

	s.Arm(expiring(epoch.Add(-time.Hour), 2))
	assert.EqualValues(t, 2, fired.Load())
}

func TestScheduler_NoExpiryArmsNothing(t *testing.T) {
	fake := clock.Fake(epoch)
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, WithClock(fake))

	s.Arm(expiring(epoch.Add(time.Hour), 1))
	s.Arm(&credential.Credential{Token: &oauth2.Token{AccessToken: "opaque"}, Generation: 2})
	assert.Equal(t, 0, fake.Pending())
	s.Arm(nil)
	fake.Advance(2 * time.Hour)
	assert.EqualValues(t, 0, fired.Load())
}

func TestScheduler_Cancel(t *testing.T) {
	fake := clock.Fake(epoch)
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, WithClock(fake))
	s.Arm(expiring(epoch.Add(time.Hour), 1))
	s.Cancel()
	fake.Advance(2 * time.Hour)
	assert.EqualValues(t, 0, fired.Load())
}
