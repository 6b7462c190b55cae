package prompt

import "testing"

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"black ghost mannequin shot of this jacket", IntentBlackGhost},
		{"ghost mannequin for a flyer", IntentGhost},
		{"Sale flyer with a woman smiling", IntentFlyerWithModel},
		{"a bold sale poster", IntentFlyer},
		{"modern living room with plants", IntentInterior},
		{"influencer holding the perfume bottle", IntentInfluencer},
		{"a woman wearing this dress", IntentModel},
		{"perfume bottle on white background", IntentProductOnly},
		{"man standing, product shot on a table", IntentModel},
		{"a red sneaker on a podium", IntentFashion},
		{"a roadside billboard", IntentFashion},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyUsesWordBoundaries(t *testing.T) {
	// "ad" must not match inside "shadow" or "headphones".
	if got := Classify("headphones with a soft shadow"); got != IntentFashion {
		t.Fatalf("Classify = %s, want %s", got, IntentFashion)
	}
}

func TestIsStaging(t *testing.T) {
	if !IsStaging("Arrange these chairs in my office") {
		t.Fatal("expected staging")
	}
	if IsStaging("redesign my bedroom") {
		t.Fatal("did not expect staging")
	}
}
