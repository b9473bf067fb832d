package models

// Person represents someone the user records gift ideas for.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	// Assigned at creation and never changed.
	ID string `json:"id"`

	// Name is the display name of the person.
	Name string `json:"name"`

	// DOB is the date of birth in "YYYY/MM/DD" form.
	// Only the shape is relied upon; it is not checked as a calendar date.
	DOB string `json:"dob"`

	// Ideas are the person's gift ideas in insertion order.
	Ideas []Idea `json:"ideas"`
}

// Idea represents a single gift idea with a photo.
type Idea struct {
	// ID is the unique identifier for the idea (UUID format).
	ID string `json:"id"`

	// Text is the description of the gift (e.g., "Wool socks").
	Text string `json:"text"`

	// Img is an opaque reference to the captured image (URI or file path).
	Img string `json:"img"`

	// Width and Height are the display dimensions computed when the photo
	// was captured.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clone returns a copy of p that shares no slices with it.
func (p Person) Clone() Person {
	ideas := make([]Idea, len(p.Ideas))
	copy(ideas, p.Ideas)
	p.Ideas = ideas
	return p
}

// IdeaCount returns the total number of ideas across people.
func IdeaCount(people []Person) int {
	n := 0
	for _, p := range people {
		n += len(p.Ideas)
	}
	return n
}
