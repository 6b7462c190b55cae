package domain

// EconomyState is the process-wide credit balance and subscription flag.
type EconomyState struct {
	Credits    int  `json:"credits"`
	Subscribed bool `json:"subscribed"`
}

// BillingFlow names the upsell flow the UI should open.
type BillingFlow string

const (
	BillingFlowSubscription BillingFlow = "subscription"
	BillingFlowTopUp        BillingFlow = "top_up"
)

// FlowFor routes a user to the subscription upsell until they subscribe, and
// to top-up packs afterwards.
func FlowFor(subscribed bool) BillingFlow {
	if subscribed {
		return BillingFlowTopUp
	}
	return BillingFlowSubscription
}

// TopUpPack is a purchasable credit bundle.
type TopUpPack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Price   string `json:"price"`
}

const (
	SubscriptionCredits = 1000
	SubscriptionPrice   = "₦5,000"
)

// TopUpPacks lists the available bundles, smallest first.
var TopUpPacks = []TopUpPack{
	{ID: "starter", Name: "Starter Pack", Credits: 600, Price: "₦3,000"},
	{ID: "pro", Name: "Pro Pack", Credits: 2000, Price: "₦10,000"},
	{ID: "empire", Name: "Empire Pack", Credits: 4000, Price: "₦20,000"},
}
