package gofulfill

// User-facing fulfillment texts
const (
	MsgUnknownUser       = "Sorry, I could not identify the user."
	MsgMissingFeature    = "Please specify which report you would like to access."
	MsgMissingPlan       = "Please specify which plan you would like to upgrade to."
	MsgUnknownIntentFmt  = "Sorry, I don't know how to handle the intent: %s"
	MsgAccessGranted     = "Access granted."
	MsgNotIncluded       = "This feature is not included in your current plan. Please contact support to upgrade."
	MsgNotVerified       = "We could not verify your subscription plan for this feature."
	MsgEntitlementError  = "An error occurred while checking entitlements."
	MsgReportFmt         = "You have access. Here is your report for '%s': %s"
	MsgUpgradedFmt       = "Your subscription has been successfully upgraded to the '%s' plan."
	MsgAccountNotFound   = "We could not find your user account to upgrade. Please contact support."
	MsgUpgradeError      = "An error occurred while upgrading your plan. Please try again later."
	MsgNotInitialized    = "Error: storage client is not initialized."
	MsgUnreadableRequest = "Sorry, I could not read the request."
)
