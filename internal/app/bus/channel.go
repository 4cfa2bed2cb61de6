package bus

// Channel names the typed conduits the state machine, storage engine and
// collaborator adapters communicate over. A Channel is a
// named conduit with zero or more subscribers; the MessageTypes it carries
// are listed in its const block below.
type Channel string

const (
	ChanCloud         Channel = "CLOUD"
	ChanNetwork       Channel = "NETWORK"
	ChanStorage       Channel = "STORAGE"
	ChanStorageData   Channel = "STORAGE_DATA"
	ChanFOTA          Channel = "FOTA"
	ChanLocation      Channel = "LOCATION"
	ChanButton        Channel = "BUTTON"
	ChanTimer         Channel = "TIMER"
	ChanBattery       Channel = "BATTERY"
	ChanEnvironmental Channel = "ENVIRONMENTAL"
	ChanLED           Channel = "LED"
)

// MessageType identifies the payload shape carried by a Message on a given
// Channel. The pair (Channel, MessageType) is what state handlers match on.
type MessageType string

// CLOUD channel message types.
const (
	MsgCloudConnected            MessageType = "CONNECTED"
	MsgCloudDisconnected         MessageType = "DISCONNECTED"
	MsgCloudShadowResponse       MessageType = "SHADOW_RESPONSE"
	MsgCloudShadowResponseDelta  MessageType = "SHADOW_RESPONSE_DELTA"
	MsgCloudPollShadow           MessageType = "POLL_SHADOW"
	MsgCloudPayloadJSON          MessageType = "PAYLOAD_JSON"
	MsgCloudProvisioningRequest  MessageType = "PROVISIONING_REQUEST"
)

// NETWORK channel message types.
const (
	MsgNetworkConnected           MessageType = "CONNECTED"
	MsgNetworkDisconnected        MessageType = "DISCONNECTED"
	MsgNetworkConnect             MessageType = "CONNECT"
	MsgNetworkDisconnect          MessageType = "DISCONNECT"
	MsgNetworkQualitySampleReq    MessageType = "QUALITY_SAMPLE_REQUEST"
	MsgNetworkQualitySampleResp   MessageType = "QUALITY_SAMPLE_RESPONSE"
	MsgNetworkModemResetLoop      MessageType = "MODEM_RESET_LOOP"
	MsgNetworkUICCFailure         MessageType = "UICC_FAILURE"
	MsgNetworkSearchDone          MessageType = "SEARCH_DONE"
	MsgNetworkAttachRejected      MessageType = "ATTACH_REJECTED"
	MsgNetworkPSMParams           MessageType = "PSM_PARAMS"
	MsgNetworkEDRXParams          MessageType = "EDRX_PARAMS"
	MsgNetworkSystemModeRequest   MessageType = "SYSTEM_MODE_REQUEST"
	MsgNetworkSystemModeResponse  MessageType = "SYSTEM_MODE_RESPONSE"
	MsgNetworkSystemModeSetLTEM   MessageType = "SYSTEM_MODE_SET_LTEM"
	MsgNetworkSystemModeSetNBIOT  MessageType = "SYSTEM_MODE_SET_NBIOT"
)

// STORAGE channel message types (mode and batch-session protocol).
const (
	MsgStorageModePassthroughRequest MessageType = "MODE_PASSTHROUGH_REQUEST"
	MsgStorageModeBufferRequest      MessageType = "MODE_BUFFER_REQUEST"
	MsgStorageModePassthrough        MessageType = "MODE_PASSTHROUGH"
	MsgStorageModeBuffer             MessageType = "MODE_BUFFER"
	MsgStorageModeChangeRejected     MessageType = "MODE_CHANGE_REJECTED"
	MsgStorageBatchRequest           MessageType = "BATCH_REQUEST"
	MsgStorageBatchAvailable         MessageType = "BATCH_AVAILABLE"
	MsgStorageBatchEmpty             MessageType = "BATCH_EMPTY"
	MsgStorageBatchBusy              MessageType = "BATCH_BUSY"
	MsgStorageBatchError             MessageType = "BATCH_ERROR"
	MsgStorageBatchClose             MessageType = "BATCH_CLOSE"
	MsgStorageClear                  MessageType = "STORAGE_CLEAR"
	MsgStorageClearRejected          MessageType = "CLEAR_REJECTED"
)

// STORAGE_DATA channel message types (passthrough forwarding).
const (
	MsgStorageData MessageType = "STORAGE_DATA"
)

// FOTA channel message types.
const (
	MsgFOTADownloadingUpdate   MessageType = "DOWNLOADING_UPDATE"
	MsgFOTASuccessRebootNeeded MessageType = "SUCCESS_REBOOT_NEEDED"
	MsgFOTAImageApplyNeeded    MessageType = "IMAGE_APPLY_NEEDED"
	MsgFOTADownloadFailed      MessageType = "DOWNLOAD_FAILED"
	MsgFOTADownloadTimedOut    MessageType = "DOWNLOAD_TIMED_OUT"
	MsgFOTADownloadCanceled    MessageType = "DOWNLOAD_CANCELED"
	MsgFOTADownloadRejected    MessageType = "DOWNLOAD_REJECTED"
	MsgFOTANoAvailableUpdate   MessageType = "NO_AVAILABLE_UPDATE"
	MsgFOTAPollRequest         MessageType = "POLL_REQUEST"
	MsgFOTAImageApply          MessageType = "IMAGE_APPLY"
	MsgFOTADownloadCancel      MessageType = "DOWNLOAD_CANCEL"
)

// LOCATION channel message types.
const (
	MsgLocationSearchTrigger MessageType = "SEARCH_TRIGGER"
	MsgLocationSearchCancel  MessageType = "SEARCH_CANCEL"
	MsgLocationSearchStarted MessageType = "SEARCH_STARTED"
	MsgLocationSearchDone    MessageType = "SEARCH_DONE"
	MsgLocationGNSSData      MessageType = "GNSS_DATA"
	MsgLocationCloudRequest  MessageType = "CLOUD_REQUEST"
	MsgLocationAGNSSRequest  MessageType = "AGNSS_REQUEST"
	MsgLocationAGNSSData     MessageType = "AGNSS_DATA"
)

// BUTTON channel message types.
const (
	MsgButtonPressShort MessageType = "PRESS_SHORT"
	MsgButtonPressLong  MessageType = "PRESS_LONG"
)

// TIMER channel message types.
const (
	MsgTimerExpiredCloud      MessageType = "EXPIRED_CLOUD"
	MsgTimerExpiredSampleData MessageType = "EXPIRED_SAMPLE_DATA"
)

// BATTERY / ENVIRONMENTAL channel message types.
const (
	MsgSensorSampleRequest MessageType = "SAMPLE_REQUEST"
	MsgSensorResponse      MessageType = "RESPONSE"
)

// LED channel message types.
const (
	MsgLEDIndicatorSampling MessageType = "INDICATOR_SAMPLING"
	MsgLEDIndicatorWaiting  MessageType = "INDICATOR_WAITING"
	MsgLEDIndicatorOff      MessageType = "INDICATOR_OFF"
)
