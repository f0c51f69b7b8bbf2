package aiimpl

import "fmt"

func rewritePrompt(title, body string) string {
	return fmt.Sprintf(`Rewrite this tech news content in a natural, engaging way for social media. Remove any source attribution or "according to" phrases. Make it sound original and interesting:

Title: %s
Content: %s

Requirements:
- Remove source mentions completely
- Make it engaging for social media
- Keep key technical details
- Use active voice
- Make it sound like original reporting
- Keep it under 250 words`, title, body)
}

func replyPrompt(originalPost, comment string) string {
	return fmt.Sprintf(`Generate a natural, helpful reply to this comment on a tech post. Be knowledgeable but conversational:

Original Post: %s
Comment to reply to: %s

Requirements:
- Be helpful and informative
- Sound natural, not robotic
- Show expertise without being condescending
- Keep under 280 characters for Twitter
- Don't mention being AI or automated`, originalPost, comment)
}

func commentPrompt(postContent string) string {
	return fmt.Sprintf(`Generate a thoughtful comment for this tech post. Show genuine interest and add value:

Post: %s

Requirements:
- Be genuinely interested and engaged
- Add meaningful insight or ask thoughtful questions
- Sound human and natural
- Keep under 280 characters
- Don't mention being AI or automated`, postContent)
}
