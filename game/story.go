package game

// StoryInterval is how many cards apart story cards are served
const StoryInterval = 5

// StorySlot maps a 1-based card position to a story slot.
// Only every StoryInterval-th position has a slot.
func StorySlot(position int) (int, bool) {
	if position <= 0 || position%StoryInterval != 0 {
		return 0, false
	}
	return position/StoryInterval - 1, true
}

// DueStory returns the story slot to serve at position, if any.
// A slot is honoured only when it is the player's next unplayed story card,
// so passed slots are never served again and no slot is skipped.
func DueStory(position, storyIndex, storyCount int) (int, bool) {
	slot, ok := StorySlot(position)
	if !ok || slot != storyIndex || slot >= storyCount {
		return 0, false
	}
	return slot, true
}
