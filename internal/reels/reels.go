// Package reels serves the fixed demo reel list. It is read-only showcase
// content with no state management of its own.
package reels

// Reel is a short demo video entry.
type Reel struct {
	ID       string `json:"id"`
	Author   string `json:"author"`
	Caption  string `json:"caption"`
	MediaURL string `json:"mediaUrl"`
}

// Demo returns the built-in reel list. Callers must not mutate the result.
func Demo() []Reel {
	return demoReels
}

var demoReels = []Reel{
	{
		ID:       "reel-1",
		Author:   "wanderlust",
		Caption:  "Sunrise over the ridge",
		MediaURL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	},
	{
		ID:       "reel-2",
		Author:   "citybites",
		Caption:  "Late night noodle run",
		MediaURL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
	},
	{
		ID:       "reel-3",
		Author:   "pawsitive",
		Caption:  "He learned a new trick",
		MediaURL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
	},
	{
		ID:       "reel-4",
		Author:   "loopstation",
		Caption:  "One take, four layers",
		MediaURL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerJoyrides.mp4",
	},
}
