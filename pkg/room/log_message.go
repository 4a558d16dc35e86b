package room

const chatHistoryLimit = 25

// addChatMessage records a relayed chat message for members who join later
// Note: this must only be called from within the run loop
func (d *Dealer) addChatMessage(msg *Message) {
	m := append(d.chatHistory, msg)
	count := len(m)
	if count > chatHistoryLimit {
		m = m[count-chatHistoryLimit:]
	}

	d.chatHistory = m
}
