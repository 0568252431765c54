package validate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestValidatorsAreTotal exercises the "Validation totality" property:
// Name, UUID, Email and Timestamp must return a boolean for every input
// string and must never panic. The generated inputs are arbitrary strings
// of valid Unicode runes; invalid UTF-8 byte sequences are not generated.
func TestValidatorsAreTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 2000
	properties := gopter.NewProperties(parameters)

	validators := map[string]func(string) bool{
		"Name":      Name,
		"UUID":      UUID,
		"Email":     Email,
		"Timestamp": Timestamp,
	}

	for label, fn := range validators {
		fn := fn
		properties.Property(label+" never panics and returns a bool", prop.ForAll(
			func(s string) bool {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("%s panicked on input %q: %v", label, s, r)
					}
				}()
				_ = fn(s)
				return true
			},
			gen.AnyString(),
		))
	}

	properties.TestingRun(t)
}

func TestNameAcceptsKnownGoodValues(t *testing.T) {
	for _, s := range []string{"abc", "alice", "alice_01", "a-b-c", "user12345678901234567890123456"} {
		if !Name(s) && len(s) <= 30 {
			t.Errorf("Name(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "ab", "has space", "semicolon;", "this-name-is-definitely-too-long-to-pass"} {
		if Name(s) {
			t.Errorf("Name(%q) = true, want false", s)
		}
	}
}

func TestUUIDAcceptsKnownGoodValues(t *testing.T) {
	if !UUID("123e4567-e89b-12d3-a456-426614174000") {
		t.Error("expected valid UUID to pass")
	}
	for _, s := range []string{"", "not-a-uuid", "123e4567-e89b-12d3-a456-42661417400", "123e4567ae89b-12d3-a456-426614174000"} {
		if UUID(s) {
			t.Errorf("UUID(%q) = true, want false", s)
		}
	}
}

func TestEmailAcceptsKnownGoodValues(t *testing.T) {
	for _, s := range []string{"alice@x.io", "a.b+c@sub.example.com"} {
		if !Email(s) {
			t.Errorf("Email(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "@x.io", "alice@", "alice@x", "alice@x.", "alice@.io", "two@@x.io", "alice@x.1o"} {
		if Email(s) {
			t.Errorf("Email(%q) = true, want false", s)
		}
	}
}

func TestTimestampAcceptsKnownGoodValues(t *testing.T) {
	if !Timestamp("2024-06-01T00:10:00") {
		t.Error("expected valid timestamp to pass")
	}
	for _, s := range []string{
		"", "2024-06-01", "2024-06-01T00:10:00Z", "2024-06-01T00:10:00.000",
		"2024-13-01T00:10:00", "2024-06-32T00:10:00", "2024-06-01T25:10:00",
		"2024-02-30T00:00:00", "2024-06-01T00:10:001",
	} {
		if Timestamp(s) {
			t.Errorf("Timestamp(%q) = true, want false", s)
		}
	}
	if !Timestamp("2024-02-29T00:00:00") {
		t.Error("2024 is a leap year, Feb 29 should be valid")
	}
	if Timestamp("2023-02-29T00:00:00") {
		t.Error("2023 is not a leap year, Feb 29 should be invalid")
	}
}
