package analyzer

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Garuda_Purana.jsonl", CategoryPurana},
		{"srimad-bhagavatam.jsonl", CategoryPurana},
		{"vishnu-sahasranama.jsonl", CategoryPurana},
		{"shiva-tandava.jsonl", CategoryPurana},
		{"devi-mahatmya.jsonl", CategoryPurana},
		{"bhagavad-gita.jsonl", CategoryGita},
		{"BHAGAVAD_notes.jsonl", CategoryGita},
		{"mahabharata_vol2.jsonl", CategoryMahabharata},
		{"mahabharat-retold.jsonl", CategoryMahabharata},
		{"dharma-sastra.jsonl", CategorySastra},
		{"vedanta_shastra.jsonl", CategorySastra},
		{"artha-teachings.jsonl", CategorySastra},
		{"kama-and-duty.jsonl", CategorySastra},
		{"sai_satcharitra.jsonl", CategorySaiBaba},
		{"baba_discourses.jsonl", CategorySaiBaba},
		{"prema-vahini.jsonl", CategorySaiBaba},
		{"sathya-speaks-vol1.jsonl", CategorySaiBaba},
		{"sundaram-hymns.jsonl", CategorySaiBaba},
		{"upanishads.jsonl", CategorySpiritual},
		{"", CategorySpiritual},
	}

	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// Marker checks are ordered, so a name carrying several markers lands in
// the earliest matching category.
func TestCategorizeOrdering(t *testing.T) {
	if got := Categorize("sai_gita_commentary.jsonl"); got != CategoryGita {
		t.Errorf("Categorize(sai_gita_commentary) = %q, want %q", got, CategoryGita)
	}
	if got := Categorize("purana_of_the_gita.jsonl"); got != CategoryPurana {
		t.Errorf("Categorize(purana_of_the_gita) = %q, want %q", got, CategoryPurana)
	}
	// Vahini titles name their topic, and the topic marker wins.
	if got := Categorize("dharma-vahini.jsonl"); got != CategorySastra {
		t.Errorf("Categorize(dharma-vahini) = %q, want %q", got, CategorySastra)
	}
	// "shivam" contains the Purana marker "shiva".
	if got := Categorize("sathyam_shivam_sundaram.jsonl"); got != CategoryPurana {
		t.Errorf("Categorize(sathyam_shivam_sundaram) = %q, want %q", got, CategoryPurana)
	}
}
