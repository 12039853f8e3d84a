package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"vasati/notices"
	"vasati/polls"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// dispatch routes one inbound envelope. Failures go back to the sender only,
// on an error-named event; nothing here panics the pumps.
func dispatch(hub *Hub, c *Client, in envelope) {
	switch in.Event {
	case "join_Individual":
		handleJoinIndividual(hub, c, in.Payload)
	case "leave_Individual":
		handleLeaveIndividual(hub, c, in.Payload)
	case "send_individual_message":
		handleSendIndividual(hub, c, in.Payload)
	case "getindividualChatHistory":
		handleIndividualHistory(c, in.Payload)
	case "get_society_individual_chat_list":
		handleSocietyChatList(c)
	case "get_resident_individual_chat_list":
		handleResidentChatList(c)

	case "createGroup":
		handleCreateGroup(hub, c, in.Payload)
	case "getGroups":
		handleGetGroups(c)
	case "joinGroup":
		handleJoinGroup(hub, c, in.Payload)
	case "sendMessage":
		handleSendGroupMessage(hub, c, in.Payload)
	case "getChatHistory":
		handleGroupHistory(c, in.Payload)
	case "add-residents":
		handleAddResidents(hub, c, in.Payload)
	case "remove-resident":
		handleRemoveResident(hub, c, in.Payload)

	case "create_poll":
		handleCreatePoll(hub, c, in.Payload)
	case "get_polls_by_society_id":
		handleGetPolls(c)
	case "vote_for__polls_by_UserID":
		handleVote(hub, c, in.Payload)
	case "editPoll":
		handleEditPoll(hub, c, in.Payload)
	case "deletePoll":
		handleDeletePoll(hub, c, in.Payload)

	case "create_notice":
		handleCreateNotice(hub, c, in.Payload)

	case "joinSecurityPanel":
		hub.Join(c, securityRoom(c.SocietyID))
		c.send("securityPanelJoined", bson.M{"societyId": c.SocietyID})
	case "Notify-Gate":
		hub.Emit(securityRoom(c.SocietyID), "Notify-Gate", json.RawMessage(in.Payload))
	case "AddVisitor":
		hub.Emit(societyRoom(c.SocietyID), "AddVisitor", json.RawMessage(in.Payload))
	case "Visitor_Response":
		hub.Emit(securityRoom(c.SocietyID), "Visitor_Response", json.RawMessage(in.Payload))

	default:
		log.Println("unknown event:", in.Event)
	}
}

// --- individual chat --------------------------------------------------------

func handleJoinIndividual(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		OtherUserID string `json:"otherUserId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.OtherUserID == "" {
		c.sendError("join_Individual_error", "otherUserId is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	conv, err := openConversation(ctx, c.SocietyID, c.UserID, p.OtherUserID)
	if err != nil {
		c.sendError("join_Individual_error", "Failed to open conversation")
		return
	}

	hub.Join(c, conversationRoom(conv.ConversationID))
	c.send("individual_joined", conv)
}

func handleLeaveIndividual(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.ConversationID == "" {
		c.sendError("leave_Individual_error", "conversationId is required")
		return
	}
	hub.Leave(c, conversationRoom(p.ConversationID))
}

func handleSendIndividual(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		ConversationID string `json:"conversationId"`
		Message        string `json:"message"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.ConversationID == "" || p.Message == "" {
		c.sendError("send_individual_message_error", "conversationId and message are required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	msg, err := appendConversationMessage(ctx, p.ConversationID, c.UserID, p.Message)
	if err == mongo.ErrNoDocuments {
		c.sendError("send_individual_message_error", "Conversation not found")
		return
	} else if err != nil {
		c.sendError("send_individual_message_error", "Failed to send message")
		return
	}

	hub.Emit(conversationRoom(p.ConversationID), "receive_individual_message", bson.M{
		"conversationId": p.ConversationID,
		"message":        msg,
	})
}

func handleIndividualHistory(c *Client, raw json.RawMessage) {
	var p struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.ConversationID == "" {
		c.sendError("individualChatHistory_error", "conversationId is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	msgs, err := conversationHistory(ctx, p.ConversationID)
	if err != nil {
		c.sendError("individualChatHistory_error", "Conversation not found")
		return
	}
	c.send("individualChatHistory", bson.M{"conversationId": p.ConversationID, "messages": msgs})
}

func handleSocietyChatList(c *Client) {
	ctx, cancel := storeCtx()
	defer cancel()
	convs, err := conversationList(ctx, bson.M{"societyId": c.SocietyID})
	if err != nil {
		c.sendError("society_individual_chat_list_error", "Failed to fetch chat list")
		return
	}
	c.send("society_individual_chat_list", convs)
}

func handleResidentChatList(c *Client) {
	ctx, cancel := storeCtx()
	defer cancel()
	convs, err := conversationList(ctx, bson.M{
		"societyId":    c.SocietyID,
		"participants": bson.M{"$in": []string{c.UserID}},
	})
	if err != nil {
		c.sendError("resident_individual_chat_list_error", "Failed to fetch chat list")
		return
	}
	c.send("resident_individual_chat_list", convs)
}

// --- group chat -------------------------------------------------------------

func handleCreateGroup(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		Name      string   `json:"name"`
		Residents []string `json:"residents"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.Name == "" {
		c.sendError("createGroup_error", "Group name is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	g, err := createGroup(ctx, c.SocietyID, p.Name, c.UserID, p.Residents)
	if err != nil {
		c.sendError("createGroup_error", "Failed to create group")
		return
	}

	hub.Join(c, groupRoom(g.GroupID))
	hub.Emit(societyRoom(c.SocietyID), "groupCreated", g)
}

func handleGetGroups(c *Client) {
	ctx, cancel := storeCtx()
	defer cancel()
	groups, err := groupsForUser(ctx, c.SocietyID, c.UserID)
	if err != nil {
		c.sendError("getGroups_error", "Failed to fetch groups")
		return
	}
	c.send("groups", groups)
}

func handleJoinGroup(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		GroupID string `json:"groupId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.GroupID == "" {
		c.sendError("joinGroup_error", "groupId is required")
		return
	}
	hub.Join(c, groupRoom(p.GroupID))
	c.send("groupJoined", bson.M{"groupId": p.GroupID})
}

func handleSendGroupMessage(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		GroupID string `json:"groupId"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.GroupID == "" || p.Message == "" {
		c.sendError("sendMessage_error", "groupId and message are required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	msg, err := appendGroupMessage(ctx, p.GroupID, c.UserID, p.Message)
	if err == mongo.ErrNoDocuments {
		c.sendError("sendMessage_error", "Group not found or sender is not a member")
		return
	} else if err != nil {
		c.sendError("sendMessage_error", "Failed to send message")
		return
	}

	hub.Emit(groupRoom(p.GroupID), "receiveMessage", bson.M{
		"groupId": p.GroupID,
		"message": msg,
	})
}

func handleGroupHistory(c *Client, raw json.RawMessage) {
	var p struct {
		GroupID string `json:"groupId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.GroupID == "" {
		c.sendError("chatHistory_error", "groupId is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	msgs, err := groupHistory(ctx, p.GroupID)
	if err != nil {
		c.sendError("chatHistory_error", "Group not found")
		return
	}
	c.send("chatHistory", bson.M{"groupId": p.GroupID, "messages": msgs})
}

func handleAddResidents(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		GroupID   string   `json:"groupId"`
		Residents []string `json:"residents"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.GroupID == "" || len(p.Residents) == 0 {
		c.sendError("add-residents_error", "groupId and residents are required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	if err := addGroupResidents(ctx, p.GroupID, p.Residents); err != nil {
		c.sendError("add-residents_error", "Failed to add residents")
		return
	}
	hub.Emit(groupRoom(p.GroupID), "residents-added", bson.M{
		"groupId":   p.GroupID,
		"residents": p.Residents,
	})
}

func handleRemoveResident(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		GroupID    string `json:"groupId"`
		ResidentID string `json:"residentId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.GroupID == "" || p.ResidentID == "" {
		c.sendError("remove-resident_error", "groupId and residentId are required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	if err := removeGroupResident(ctx, p.GroupID, p.ResidentID); err != nil {
		c.sendError("remove-resident_error", "Failed to remove resident")
		return
	}
	hub.Emit(groupRoom(p.GroupID), "resident-removed", bson.M{
		"groupId":    p.GroupID,
		"residentId": p.ResidentID,
	})
}

// --- polls ------------------------------------------------------------------

func handleCreatePoll(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		Question  string    `json:"question"`
		Options   []string  `json:"options"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("create_poll_error", "Invalid poll payload")
		return
	}

	poll := &polls.Poll{
		SocietyID: c.SocietyID,
		Question:  p.Question,
		Options:   p.Options,
		ExpiresAt: p.ExpiresAt,
		CreatedBy: c.UserID,
	}
	ctx, cancel := storeCtx()
	defer cancel()
	if err := polls.Create(ctx, poll); err != nil {
		c.sendError("create_poll_error", err.Error())
		return
	}
	hub.Emit(societyRoom(c.SocietyID), "poll_created", poll)
}

func handleGetPolls(c *Client) {
	ctx, cancel := storeCtx()
	defer cancel()
	out, err := polls.ListBySociety(ctx, c.SocietyID)
	if err != nil {
		c.sendError("get_polls_error", "Failed to fetch polls")
		return
	}
	c.send("polls_by_society_id", out)
}

func handleVote(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		PollID string `json:"pollId"`
		Option string `json:"option"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.PollID == "" || p.Option == "" {
		c.sendError("vote_error", "pollId and option are required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	poll, err := polls.CastVote(ctx, p.PollID, c.UserID, p.Option)
	switch {
	case errors.Is(err, polls.ErrAlreadyVoted), errors.Is(err, polls.ErrExpired), errors.Is(err, polls.ErrNotFound):
		c.sendError("vote_error", err.Error())
		return
	case err != nil:
		c.sendError("vote_error", "Failed to record vote")
		return
	}
	hub.Emit(societyRoom(c.SocietyID), "poll_updated", poll)
}

func handleEditPoll(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		PollID    string    `json:"pollId"`
		Question  string    `json:"question"`
		Options   []string  `json:"options"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.PollID == "" {
		c.sendError("editPoll_error", "pollId is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	poll, err := polls.Edit(ctx, p.PollID, p.Question, p.Options, p.ExpiresAt)
	if errors.Is(err, polls.ErrNotFound) {
		c.sendError("editPoll_error", "Poll not found")
		return
	} else if err != nil {
		c.sendError("editPoll_error", err.Error())
		return
	}
	hub.Emit(societyRoom(c.SocietyID), "pollEdited", poll)
}

func handleDeletePoll(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		PollID string `json:"pollId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.PollID == "" {
		c.sendError("deletePoll_error", "pollId is required")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	societyID, err := polls.Delete(ctx, p.PollID)
	if errors.Is(err, polls.ErrNotFound) {
		c.sendError("deletePoll_error", "Poll not found")
		return
	} else if err != nil {
		c.sendError("deletePoll_error", "Failed to delete poll")
		return
	}
	hub.Emit(societyRoom(societyID), "pollDeleted", bson.M{"pollId": p.PollID})
}

// --- notices ----------------------------------------------------------------

func handleCreateNotice(hub *Hub, c *Client, raw json.RawMessage) {
	var p struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("create_notice_error", "Invalid notice payload")
		return
	}

	n := &notices.Notice{
		SocietyID:   c.SocietyID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		CreatedBy:   c.UserID,
	}
	ctx, cancel := storeCtx()
	defer cancel()
	if err := notices.Create(ctx, n); err != nil {
		c.sendError("create_notice_error", err.Error())
		return
	}
	hub.Emit(societyRoom(c.SocietyID), "notice_created", n)
}
