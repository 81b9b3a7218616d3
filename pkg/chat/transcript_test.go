package chat

import "testing"

func TestTranscriptGrowingTurn(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("hello")

	if err := tr.BeginAssistant(); err != nil {
		t.Fatalf("BeginAssistant error: %v", err)
	}
	// Only one turn may grow at a time.
	if err := tr.BeginAssistant(); err == nil {
		t.Fatal("expected error beginning a second growing turn")
	}

	if err := tr.AppendFragment("Hel"); err != nil {
		t.Fatalf("AppendFragment error: %v", err)
	}
	if err := tr.AppendFragment("lo"); err != nil {
		t.Fatalf("AppendFragment error: %v", err)
	}

	turns := tr.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "hello" {
		t.Fatalf("turns[0] = %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Text != "Hello" {
		t.Fatalf("turns[1] = %+v", turns[1])
	}

	tr.Seal()
	if err := tr.AppendFragment("!"); err == nil {
		t.Fatal("expected error appending to sealed transcript")
	}
	if got := tr.Snapshot()[1].Text; got != "Hello" {
		t.Fatalf("text after seal = %q, want %q", got, "Hello")
	}
}

func TestTranscriptSetGrowingText(t *testing.T) {
	tr := NewTranscript()
	if err := tr.BeginAssistant(); err != nil {
		t.Fatalf("BeginAssistant error: %v", err)
	}
	if err := tr.SetGrowingText("Error: upstream rejected"); err != nil {
		t.Fatalf("SetGrowingText error: %v", err)
	}
	tr.Seal()

	turns := tr.Snapshot()
	if turns[0].Text != "Error: upstream rejected" {
		t.Fatalf("text = %q", turns[0].Text)
	}
	if err := tr.SetGrowingText("x"); err == nil {
		t.Fatal("expected error after seal")
	}
}

func TestTranscriptSnapshotIsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("one")

	snap := tr.Snapshot()
	snap[0].Text = "mutated"

	if got := tr.Snapshot()[0].Text; got != "one" {
		t.Fatalf("snapshot mutation leaked into transcript: %q", got)
	}
}
