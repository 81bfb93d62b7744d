package events

// User events. The order is append-only: values are referenced by persisted
// indication tables and remote (GAIA) injection, so new events go at the end.
const (
	// EventInvalid is a placeholder for identifier zero.
	EventInvalid ID = UserEventsBase + iota
	EventPowerOn
	EventPowerOff
	EventEnterPairing
	EventInitiateVoiceDial
	EventCancelVoiceDial
	EventLastNumberRedial
	EventAnswer
	EventReject
	EventCancelEnd
	EventTransferToggle
	EventToggleMute
	EventVolumeUp
	EventVolumeDown
	// EventToggleVolume swaps the volume button orientation.
	EventToggleVolume
	EventThreeWayReleaseAllHeld
	EventThreeWayAcceptWaitingReleaseActive
	EventThreeWayAcceptWaitingHoldActive
	EventThreeWayAddHeldTo3Way
	EventThreeWayConnect2Disconnect
	EventLedsOnOffToggle
	EventLEDsOn
	EventLEDsOff
	EventEstablishSLC
	EventMuteOn
	EventMuteOff
	EventEnterTXContTestMode
	EventEnterDUTState
	EventPlaceIncomingCallOnHold
	EventAcceptHeldIncomingCall
	EventRejectHeldIncomingCall
	EventAudioPromptsOn
	EventAudioPromptsOff
	EventDialStoredNumber
	EventRestoreDefaults
	EventConfirmationAccept
	EventConfirmationReject
	EventSelectTTSLanguageMode
	EventButtonLockingOn
	EventButtonLockingOff
	EventButtonLockingToggle
	EventEnableMultipoint
	EventDisableMultipoint
	EventResetPairedDeviceList
	EventEnablePowerOff
	EventDisablePowerOff
	EventStartPagingInConnState
	EventStopPagingInConnState
	EventSSREnable
	EventSSRDisable
	EventAvrcpPlayPause
	EventAvrcpStop
	EventAvrcpSkipForward
	EventAvrcpSkipBackward
	EventAvrcpFastForwardPress
	EventAvrcpFastForwardRelease
	EventAvrcpRewindPress
	EventAvrcpRewindRelease
	EventFmOn
	EventFmOff
	EventFmTuneUp
	EventFmTuneDown
	EventFmStore
	EventFmErase
	EventSubwooferStartInquiry
	EventSubwooferDeletePairing
	EventSubwooferOpenMedia
	EventSubwooferCloseMedia
	EventSubwooferVolumeUp
	EventSubwooferVolumeDown
	EventELRampToggle
	EventELPatternNext
	EventELPatternReset
	EventVibrateToggle
	EventAccelOn
	EventAccelOff
	EventPairingFail
	EventPairingSuccessful
	EventSLCConnected
	EventSLCConnectedAfterPowerOn
	EventSLCDisconnected
	EventLinkLoss
	EventLimboTimeout
	EventLowBattery
	EventTrickleCharge
	EventFastCharge
	EventOkBattery
	EventChargerConnected
	EventChargerDisconnected
	EventChargeError
	EventGasGauge0
	EventGasGauge1
	EventGasGauge2
	EventGasGauge3
	EventCheckForLowBatt
	EventAutoSwitchOff
	EventLEDEventComplete
	EventMuteReminder
	EventEndOfCall
	EventCallAnswered
	EventSCOLinkOpen
	EventSCOLinkClose
	EventMissedCall
	EventRefreshEncryption
	EventResetLEDTimeout
	EventCancelLedIndication
	EventConnectableTimeout
	EventLinkLossReconnect
	EventConfirmationRequest
	EventError
	EventELPatternTick
	EventAccelSample
	EventAvrcpFastForwardRepeat
	EventAvrcpRewindRepeat
	EventA2dpConnected
	EventA2dpDisconnected
	EventA2dpStreaming
	EventA2dpSuspended
	EventNewMessage

	eventUserTop
)

var userEventNames = [...]string{
	EventInvalid - UserEventsBase:                            "EventInvalid",
	EventPowerOn - UserEventsBase:                            "EventPowerOn",
	EventPowerOff - UserEventsBase:                           "EventPowerOff",
	EventEnterPairing - UserEventsBase:                       "EventEnterPairing",
	EventInitiateVoiceDial - UserEventsBase:                  "EventInitiateVoiceDial",
	EventCancelVoiceDial - UserEventsBase:                    "EventCancelVoiceDial",
	EventLastNumberRedial - UserEventsBase:                   "EventLastNumberRedial",
	EventAnswer - UserEventsBase:                             "EventAnswer",
	EventReject - UserEventsBase:                             "EventReject",
	EventCancelEnd - UserEventsBase:                          "EventCancelEnd",
	EventTransferToggle - UserEventsBase:                     "EventTransferToggle",
	EventToggleMute - UserEventsBase:                         "EventToggleMute",
	EventVolumeUp - UserEventsBase:                           "EventVolumeUp",
	EventVolumeDown - UserEventsBase:                         "EventVolumeDown",
	EventToggleVolume - UserEventsBase:                       "EventToggleVolume",
	EventThreeWayReleaseAllHeld - UserEventsBase:             "EventThreeWayReleaseAllHeld",
	EventThreeWayAcceptWaitingReleaseActive - UserEventsBase: "EventThreeWayAcceptWaitingReleaseActive",
	EventThreeWayAcceptWaitingHoldActive - UserEventsBase:    "EventThreeWayAcceptWaitingHoldActive",
	EventThreeWayAddHeldTo3Way - UserEventsBase:              "EventThreeWayAddHeldTo3Way",
	EventThreeWayConnect2Disconnect - UserEventsBase:         "EventThreeWayConnect2Disconnect",
	EventLedsOnOffToggle - UserEventsBase:                    "EventLedsOnOffToggle",
	EventLEDsOn - UserEventsBase:                             "EventLEDsOn",
	EventLEDsOff - UserEventsBase:                            "EventLEDsOff",
	EventEstablishSLC - UserEventsBase:                       "EventEstablishSLC",
	EventMuteOn - UserEventsBase:                             "EventMuteOn",
	EventMuteOff - UserEventsBase:                            "EventMuteOff",
	EventEnterTXContTestMode - UserEventsBase:                "EventEnterTXContTestMode",
	EventEnterDUTState - UserEventsBase:                      "EventEnterDUTState",
	EventPlaceIncomingCallOnHold - UserEventsBase:            "EventPlaceIncomingCallOnHold",
	EventAcceptHeldIncomingCall - UserEventsBase:             "EventAcceptHeldIncomingCall",
	EventRejectHeldIncomingCall - UserEventsBase:             "EventRejectHeldIncomingCall",
	EventAudioPromptsOn - UserEventsBase:                     "EventAudioPromptsOn",
	EventAudioPromptsOff - UserEventsBase:                    "EventAudioPromptsOff",
	EventDialStoredNumber - UserEventsBase:                   "EventDialStoredNumber",
	EventRestoreDefaults - UserEventsBase:                    "EventRestoreDefaults",
	EventConfirmationAccept - UserEventsBase:                 "EventConfirmationAccept",
	EventConfirmationReject - UserEventsBase:                 "EventConfirmationReject",
	EventSelectTTSLanguageMode - UserEventsBase:              "EventSelectTTSLanguageMode",
	EventButtonLockingOn - UserEventsBase:                    "EventButtonLockingOn",
	EventButtonLockingOff - UserEventsBase:                   "EventButtonLockingOff",
	EventButtonLockingToggle - UserEventsBase:                "EventButtonLockingToggle",
	EventEnableMultipoint - UserEventsBase:                   "EventEnableMultipoint",
	EventDisableMultipoint - UserEventsBase:                  "EventDisableMultipoint",
	EventResetPairedDeviceList - UserEventsBase:              "EventResetPairedDeviceList",
	EventEnablePowerOff - UserEventsBase:                     "EventEnablePowerOff",
	EventDisablePowerOff - UserEventsBase:                    "EventDisablePowerOff",
	EventStartPagingInConnState - UserEventsBase:             "EventStartPagingInConnState",
	EventStopPagingInConnState - UserEventsBase:              "EventStopPagingInConnState",
	EventSSREnable - UserEventsBase:                          "EventSSREnable",
	EventSSRDisable - UserEventsBase:                         "EventSSRDisable",
	EventAvrcpPlayPause - UserEventsBase:                     "EventAvrcpPlayPause",
	EventAvrcpStop - UserEventsBase:                          "EventAvrcpStop",
	EventAvrcpSkipForward - UserEventsBase:                   "EventAvrcpSkipForward",
	EventAvrcpSkipBackward - UserEventsBase:                  "EventAvrcpSkipBackward",
	EventAvrcpFastForwardPress - UserEventsBase:              "EventAvrcpFastForwardPress",
	EventAvrcpFastForwardRelease - UserEventsBase:            "EventAvrcpFastForwardRelease",
	EventAvrcpRewindPress - UserEventsBase:                   "EventAvrcpRewindPress",
	EventAvrcpRewindRelease - UserEventsBase:                 "EventAvrcpRewindRelease",
	EventFmOn - UserEventsBase:                               "EventFmOn",
	EventFmOff - UserEventsBase:                              "EventFmOff",
	EventFmTuneUp - UserEventsBase:                           "EventFmTuneUp",
	EventFmTuneDown - UserEventsBase:                         "EventFmTuneDown",
	EventFmStore - UserEventsBase:                            "EventFmStore",
	EventFmErase - UserEventsBase:                            "EventFmErase",
	EventSubwooferStartInquiry - UserEventsBase:              "EventSubwooferStartInquiry",
	EventSubwooferDeletePairing - UserEventsBase:             "EventSubwooferDeletePairing",
	EventSubwooferOpenMedia - UserEventsBase:                 "EventSubwooferOpenMedia",
	EventSubwooferCloseMedia - UserEventsBase:                "EventSubwooferCloseMedia",
	EventSubwooferVolumeUp - UserEventsBase:                  "EventSubwooferVolumeUp",
	EventSubwooferVolumeDown - UserEventsBase:                "EventSubwooferVolumeDown",
	EventELRampToggle - UserEventsBase:                       "EventELRampToggle",
	EventELPatternNext - UserEventsBase:                      "EventELPatternNext",
	EventELPatternReset - UserEventsBase:                     "EventELPatternReset",
	EventVibrateToggle - UserEventsBase:                      "EventVibrateToggle",
	EventAccelOn - UserEventsBase:                            "EventAccelOn",
	EventAccelOff - UserEventsBase:                           "EventAccelOff",
	EventPairingFail - UserEventsBase:                        "EventPairingFail",
	EventPairingSuccessful - UserEventsBase:                  "EventPairingSuccessful",
	EventSLCConnected - UserEventsBase:                       "EventSLCConnected",
	EventSLCConnectedAfterPowerOn - UserEventsBase:           "EventSLCConnectedAfterPowerOn",
	EventSLCDisconnected - UserEventsBase:                    "EventSLCDisconnected",
	EventLinkLoss - UserEventsBase:                           "EventLinkLoss",
	EventLimboTimeout - UserEventsBase:                       "EventLimboTimeout",
	EventLowBattery - UserEventsBase:                         "EventLowBattery",
	EventTrickleCharge - UserEventsBase:                      "EventTrickleCharge",
	EventFastCharge - UserEventsBase:                         "EventFastCharge",
	EventOkBattery - UserEventsBase:                          "EventOkBattery",
	EventChargerConnected - UserEventsBase:                   "EventChargerConnected",
	EventChargerDisconnected - UserEventsBase:                "EventChargerDisconnected",
	EventChargeError - UserEventsBase:                        "EventChargeError",
	EventGasGauge0 - UserEventsBase:                          "EventGasGauge0",
	EventGasGauge1 - UserEventsBase:                          "EventGasGauge1",
	EventGasGauge2 - UserEventsBase:                          "EventGasGauge2",
	EventGasGauge3 - UserEventsBase:                          "EventGasGauge3",
	EventCheckForLowBatt - UserEventsBase:                    "EventCheckForLowBatt",
	EventAutoSwitchOff - UserEventsBase:                      "EventAutoSwitchOff",
	EventLEDEventComplete - UserEventsBase:                   "EventLEDEventComplete",
	EventMuteReminder - UserEventsBase:                       "EventMuteReminder",
	EventEndOfCall - UserEventsBase:                          "EventEndOfCall",
	EventCallAnswered - UserEventsBase:                       "EventCallAnswered",
	EventSCOLinkOpen - UserEventsBase:                        "EventSCOLinkOpen",
	EventSCOLinkClose - UserEventsBase:                       "EventSCOLinkClose",
	EventMissedCall - UserEventsBase:                         "EventMissedCall",
	EventRefreshEncryption - UserEventsBase:                  "EventRefreshEncryption",
	EventResetLEDTimeout - UserEventsBase:                    "EventResetLEDTimeout",
	EventCancelLedIndication - UserEventsBase:                "EventCancelLedIndication",
	EventConnectableTimeout - UserEventsBase:                 "EventConnectableTimeout",
	EventLinkLossReconnect - UserEventsBase:                  "EventLinkLossReconnect",
	EventConfirmationRequest - UserEventsBase:                "EventConfirmationRequest",
	EventError - UserEventsBase:                              "EventError",
	EventELPatternTick - UserEventsBase:                      "EventELPatternTick",
	EventAccelSample - UserEventsBase:                        "EventAccelSample",
	EventAvrcpFastForwardRepeat - UserEventsBase:             "EventAvrcpFastForwardRepeat",
	EventAvrcpRewindRepeat - UserEventsBase:                  "EventAvrcpRewindRepeat",
	EventA2dpConnected - UserEventsBase:                      "EventA2dpConnected",
	EventA2dpDisconnected - UserEventsBase:                   "EventA2dpDisconnected",
	EventA2dpStreaming - UserEventsBase:                      "EventA2dpStreaming",
	EventA2dpSuspended - UserEventsBase:                      "EventA2dpSuspended",
	EventNewMessage - UserEventsBase:                         "EventNewMessage",
}
