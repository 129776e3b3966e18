package models

// Scenario is a scripted walkthrough of a privacy-preserving check.
type Scenario struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	ZKProof     string   `json:"zk_proof"`
	DataShared  string   `json:"data_shared"`
	Outcome     string   `json:"outcome"`
}

// LastStep is the index of the final step.
func (s Scenario) LastStep() int {
	return len(s.Steps) - 1
}

// Scenarios are the walkthroughs on offer, in display order.
var Scenarios = []Scenario{
	{
		ID:          "banking",
		Title:       "Banking KYC Verification",
		Description: "User proves citizenship and age without revealing personal data",
		Steps: []string{
			"User approaches bank for account opening",
			"Bank requests age and citizenship verification",
			"User generates Zero-Knowledge proof showing 18+ and citizenship",
			"Bank verifies proof without accessing personal data",
			"Account approved while maintaining user privacy",
		},
		ZKProof:    "Prove: Age ≥ 18 AND Citizenship = Valid",
		DataShared: "Zero personal data revealed",
		Outcome:    "Account opened with full privacy protection",
	},
	{
		ID:          "education",
		Title:       "Exam Hall Entry",
		Description: "Offline QR verification for exam eligibility",
		Steps: []string{
			"Student arrives at exam hall with smartphone offline",
			"QR code generated from stored credential",
			"Exam proctor scans QR code with offline device",
			"Cryptographic verification confirms student eligibility",
			"Entry granted without internet connectivity",
		},
		ZKProof:    "Prove: Student_ID = Valid AND Course_Enrolled = TRUE",
		DataShared: "Only exam eligibility status",
		Outcome:    "Secure offline verification completed",
	},
	{
		ID:          "healthcare",
		Title:       "Medical Record Access",
		Description: "Patient shares vaccination proof without full medical history",
		Steps: []string{
			"Patient visits new healthcare provider",
			"Provider requests vaccination status",
			"Patient selects specific vaccine credentials to share",
			"ZK proof confirms vaccination without revealing other medical data",
			"Treatment proceeds with verified immunity status",
		},
		ZKProof:    "Prove: COVID_Vaccine = Completed AND Date > Required",
		DataShared: "Only vaccination status and date",
		Outcome:    "Healthcare access with medical privacy intact",
	},
	{
		ID:          "voting",
		Title:       "Digital Voting Pilot",
		Description: "Citizens prove eligibility privately for secure voting",
		Steps: []string{
			"Citizen accesses digital voting platform",
			"System requests eligibility verification",
			"Citizen proves age, citizenship, and registration status",
			"Voting booth opens without revealing voter identity",
			"Vote cast with full anonymity and verifiable eligibility",
		},
		ZKProof:    "Prove: Age ≥ 18 AND Citizenship = Valid AND Registration = Active",
		DataShared: "No personal identifiers shared",
		Outcome:    "Anonymous vote with verified eligibility",
	},
}

// FindScenario looks a scenario up by id.
func FindScenario(id string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}
