package appfsm

// State names across every level of the hierarchy.
// Each level owns its own *fsm.FSM; these strings are that FSM's
// state names, not a single flattened state space.
const (
	StateRunning = "running"
	StateFOTA    = "fota"

	StateBufferMode      = "buffer_mode"
	StatePassthroughMode = "passthrough_mode"

	StateBufferDisconnected = "buffer_disconnected"
	StateBufferConnected    = "buffer_connected"

	StateBDSampling = "bd_sampling"
	StateBDWaiting  = "bd_waiting"
	StateBCSampling = "bc_sampling"
	StateBCWaiting  = "bc_waiting"

	StatePTDisconnected      = "pt_disconnected"
	StatePTConnectedSampling = "pt_connected_sampling"
	StatePTConnectedWaiting  = "pt_connected_waiting"

	StateFOTADownloading           = "fota_downloading"
	StateFOTAWaitDisconnect        = "fota_wait_disconnect"
	StateFOTAWaitDisconnectToApply = "fota_wait_disconnect_to_apply"
	StateFOTAApplyingImage         = "fota_applying_image"
	StateFOTARebooting             = "fota_rebooting"
)

// Event names, scoped per level (the same name may appear at more than one
// level's *fsm.FSM without ambiguity, since each FSM is a separate value).
const (
	evEnterFOTA = "enter_fota"
	evResume    = "resume"

	evToPassthrough = "to_passthrough"
	evToBuffer      = "to_buffer"

	evConnected    = "connected"
	evDisconnected = "disconnected"

	evSearchDone = "search_done"
	evWake       = "wake"

	evImageApplyNeeded    = "image_apply_needed"
	evSuccessRebootNeeded = "success_reboot_needed"
	evDisconnectDone      = "disconnect_done"
)
