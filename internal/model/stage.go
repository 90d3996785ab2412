package model

// Stage names one step of the fixed order-fulfillment track. Stages complete
// strictly in sequence: a stage may only flip to done when every stage before
// it is done and it is itself still pending.
type Stage string

const (
	StageOrdered         Stage = "ordered"
	StageAdminAccepted   Stage = "adminAccepted"
	StageVendorAccepted  Stage = "vendorAccepted"
	StageOrderDispatched Stage = "orderDispatched"
	StageInTransit       Stage = "inTransit"
	StageReached         Stage = "reached"
	StageDelivered       Stage = "delivered"
	StageInvoiceUploaded Stage = "invoiceUploaded"
	StageOrderCompleted  Stage = "orderCompleted"
)

// StageSequence returns the nine stages in track order.
func StageSequence() []Stage {
	return []Stage{
		StageOrdered,
		StageAdminAccepted,
		StageVendorAccepted,
		StageOrderDispatched,
		StageInTransit,
		StageReached,
		StageDelivered,
		StageInvoiceUploaded,
		StageOrderCompleted,
	}
}

// StageIndex returns the position of s in the track, or -1 when s is not a
// known stage name.
func StageIndex(s Stage) int {
	for i, stage := range StageSequence() {
		if stage == s {
			return i
		}
	}
	return -1
}

// StageActor returns the role authorized to advance s. The ordered stage
// belongs to the supervisor, set implicitly at order creation.
func StageActor(s Stage) string {
	switch s {
	case StageOrdered, StageInvoiceUploaded:
		return RoleSupervisor
	case StageAdminAccepted, StageOrderCompleted:
		return RoleAdmin
	case StageVendorAccepted, StageOrderDispatched, StageInTransit, StageReached, StageDelivered:
		return RoleVendor
	}
	return ""
}

// stageText holds the display text for one stage: a label per role while the
// stage is pending, plus optional per-role overrides once it is done. Display
// text lives here, apart from the transition rules.
type stageText struct {
	super, admin, vendor             string
	superDone, adminDone, vendorDone string
}

func stageTexts() map[Stage]stageText {
	return map[Stage]stageText{
		StageOrdered: {
			super: "Order Requested", admin: "Order Requested", vendor: "Order Requested",
		},
		StageAdminAccepted: {
			super: "Admin accepted", admin: "Approve order", vendor: "Admin accepted",
			adminDone: "Admin Approved",
		},
		StageVendorAccepted: {
			super: "Vendor accepted and in process", admin: "Vendor accepted and in process", vendor: "Accept Order",
			vendorDone: "Vendor Accepted",
		},
		StageOrderDispatched: {
			super: "Order Dispatched", admin: "Order Dispatched", vendor: "Order Dispatched",
		},
		StageInTransit: {
			super: "Order in transit", admin: "Order in transit", vendor: "Order in transit",
		},
		StageReached: {
			super: "Order Reached City", admin: "Order Reached City", vendor: "Order Reached City",
		},
		StageDelivered: {
			super: "Order delivered", admin: "Order delivered", vendor: "Order delivered",
		},
		StageInvoiceUploaded: {
			super: "Upload Invoice", admin: "Order Invoice uploaded", vendor: "Order Invoice uploaded",
			superDone: "Invoice Uploaded",
		},
		StageOrderCompleted: {
			super: "Order Completed", admin: "Order Completed", vendor: "Order Completed",
		},
	}
}

// StageMessage returns the display text for a stage as seen by a role.
// When done is true the completion override applies where one exists.
func StageMessage(s Stage, role string, done bool) string {
	text, ok := stageTexts()[s]
	if !ok {
		return ""
	}

	var pending, completed string
	switch role {
	case RoleSupervisor:
		pending, completed = text.super, text.superDone
	case RoleAdmin:
		pending, completed = text.admin, text.adminDone
	case RoleVendor:
		pending, completed = text.vendor, text.vendorDone
	}

	if done && completed != "" {
		return completed
	}
	return pending
}
