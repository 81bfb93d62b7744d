package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanges_DoNotOverlap(t *testing.T) {
	ranges := Ranges()
	require.Len(t, ranges, 15)
	assert.Equal(t, UserEventsRange, ranges[0], "user events are matched first")

	for i := range ranges {
		assert.LessOrEqual(t, ranges[i].Base, ranges[i].Top, ranges[i].String())
		for j := i + 1; j < len(ranges); j++ {
			assert.False(t, ranges[i].Overlaps(ranges[j]), "%s overlaps %s", ranges[i], ranges[j])
		}
	}
}

func TestRange_Contains(t *testing.T) {
	assert.True(t, ProfileRange.Contains(HfpSlcConnectCfm))
	assert.True(t, ProfileRange.Contains(A2dpMediaStartInd))
	assert.True(t, ConnectionRange.Contains(ConnectionTop))
	assert.False(t, ConnectionRange.Contains(ProfileBase))
	assert.Equal(t, "codec[0x5200-0x52FF]", CodecRange.String())
}

func TestUserEvents_FitInRange(t *testing.T) {
	all := AllUserEvents()
	require.NotEmpty(t, all)
	assert.Equal(t, EventInvalid, all[0])
	assert.LessOrEqual(t, all[len(all)-1], UserEventsTop)

	for _, id := range all {
		assert.True(t, UserEventsRange.Contains(id))
		assert.NotEmpty(t, id.String())
	}
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "EventPowerOn", EventPowerOn.String())
	assert.Equal(t, "HfpSlcConnectCfm", HfpSlcConnectCfm.String())
	assert.Equal(t, "0x4000", ID(0x4000).String())
	assert.Equal(t, "0x60FF", UserEventsTop.String())
}

func TestParseUserEvent(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"EventPowerOn", EventPowerOn},
		{"poweron", EventPowerOn},
		{"  VolumeUp ", EventVolumeUp},
		{"eventelpatternnext", EventELPatternNext},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUserEvent(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseUserEvent("EventTeleport")
	assert.Error(t, err)
}

func TestBookkeepingExempt(t *testing.T) {
	exempt := BookkeepingExempt()
	assert.Len(t, exempt, len(bookkeepingExempt))

	for _, id := range []ID{EventLowBattery, EventLEDEventComplete, EventAutoSwitchOff, EventMissedCall, EventError} {
		assert.True(t, IsBookkeepingExempt(id), id.String())
	}
	for _, id := range []ID{EventPowerOn, EventVolumeUp, EventEnterPairing, EventAnswer} {
		assert.False(t, IsBookkeepingExempt(id), id.String())
	}

	for i := 1; i < len(exempt); i++ {
		assert.Less(t, exempt[i-1], exempt[i], "exemptions are listed in enumeration order")
	}
}
