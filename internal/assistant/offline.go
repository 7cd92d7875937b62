package assistant

import "github.com/madhava696/EACA/internal/emotion"

// offlineReply synthesizes a locally generated reply for when both the
// streaming and fallback request paths fail. The wording varies with the
// user's mood so the assistant stays in character even while unreachable.
func offlineReply(mood string) string {
	switch emotion.Normalize(mood) {
	case emotion.Stressed, emotion.Anxious, emotion.Fearful:
		return "I'm having trouble reaching the assistant service right now, but no need to add that to your plate. " +
			"Let's take it step by step: what specific part are you working on? I'll catch up as soon as I'm back online."
	case emotion.Happy, emotion.Surprised:
		return "I love the energy, but I can't reach the assistant service at the moment. " +
			"Hold that thought and try again in a little while; we'll channel it into something great."
	case emotion.Confused:
		return "I can't reach the assistant service right now, so I can't help untangle this just yet. " +
			"No worries, just jot down where you got stuck and ask me again shortly."
	case emotion.Sad:
		return "I'm offline at the moment and can't give you a proper answer. " +
			"Every developer hits rough patches; hang in there and try me again soon."
	case emotion.Angry, emotion.Disgusted:
		return "I understand this is frustrating, and unfortunately I can't reach the assistant service right now. " +
			"Please try again shortly and we'll work through the issue systematically."
	default:
		return "I'm currently offline and can't process your message. Please check your connection and try again."
	}
}
