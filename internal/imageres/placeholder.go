package imageres

// PlaceholderContentType is the media type of Placeholder.
const PlaceholderContentType = "image/svg+xml"

// Placeholder is the neutral gray square shown while an image is missing or broken.
var Placeholder = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="300" height="300" viewBox="0 0 300 300">` +
	`<rect width="300" height="300" fill="#8e8e93"/></svg>`)
