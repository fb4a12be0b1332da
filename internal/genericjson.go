package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON document")

// ChatsAdapter ingests JSON chat documents of unknown, inconsistent
// shape. Discovery first tries a small closed set of recognized
// envelope shapes; only when none match does it fall back to a
// bounded recursive walk over the whole document.
//
// Message predicate policy: an object is a message iff it carries
// non-empty content under one of the content key aliases. Role is
// optional and defaults to user.
type ChatsAdapter struct {
	cfg Config
}

// NewChatsAdapter creates a ChatsAdapter.
func NewChatsAdapter(cfg Config) *ChatsAdapter {
	return &ChatsAdapter{cfg: cfg}
}

// maxDiscoveryDepth bounds recursion into nested objects and arrays so
// adversarial deeply-nested documents cannot grow the stack unboundedly.
const maxDiscoveryDepth = 6

// messageListKeys is the allow-list of key names under which an array
// of objects is treated as a message list.
var messageListKeys = []string{
	"messages", "history", "conversations", "chats",
	"tabs", "bubbles", "entries", "items", "turns", "log",
}

// wrapperKeys name arrays whose object elements wrap a per-conversation
// message list.
var wrapperKeys = []string{"conversations", "chats", "tabs", "sessions"}

var (
	contentKeys   = []string{"content", "text", "message", "body", "value", "summary", "prompt"}
	roleKeys      = []string{"role", "sender", "author", "from", "type", "actor", "speaker"}
	timestampKeys = []string{
		"timestamp", "time", "created_at", "createdAt",
		"date", "ts", "sent_at", "sentAt", "updated_at", "updatedAt",
	}
	modelKeys = []string{"model", "model_name", "modelName"}
)

// Harvest parses every JSON document found for the project.
func (a *ChatsAdapter) Harvest(projectPath string) ([]Message, []Conversation) {
	dirs := ResolveProjectDirs(a.cfg.ChatsDir, projectPath)
	if len(dirs) == 0 {
		return nil, nil
	}

	var messages []Message
	var conversations []Conversation
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			LogDebug("chats: cannot read %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			msgs, convs := a.parseDocument(path, projectPath)
			messages = append(messages, msgs...)
			conversations = append(conversations, convs...)
		}
	}
	return messages, conversations
}

func (a *ChatsAdapter) parseDocument(path, projectPath string) ([]Message, []Conversation) {
	data, err := os.ReadFile(path)
	if err != nil {
		LogDebug("chats: cannot read %s: %v", path, err)
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		LogWarn("chats: %v", &ParseError{Source: SourceChats, Item: path, Err: errInvalidJSON})
		return nil, nil
	}

	fileBase := strings.TrimSuffix(filepath.Base(path), ".json")
	root := gjson.ParseBytes(data)

	lists := discoverMessageLists(root)
	if len(lists) == 0 {
		return nil, nil
	}

	now := a.cfg.now()
	var messages []Message
	var conversations []Conversation
	for _, list := range lists {
		convID := fileBase
		if list.path != "" {
			convID = fileBase + ":" + list.path
		}
		var convMsgs []Message
		for i, item := range list.items {
			msg, ok := a.messageFromItem(item, now)
			if !ok {
				continue
			}
			msg.ID = fmt.Sprintf("%s[%d]", convID, i)
			msg.Source = SourceChats
			msg.ProjectPath = projectPath
			msg.ConversationID = convID
			convMsgs = append(convMsgs, msg)
		}
		if len(convMsgs) == 0 {
			continue
		}
		messages = append(messages, convMsgs...)
		conversations = append(conversations, SummarizeConversation(convID, SourceChats, convMsgs))
	}
	return messages, conversations
}

// discoveredList is an array of objects found at a dotted/bracketed
// path inside a document, believed to hold messages.
type discoveredList struct {
	path  string
	items []gjson.Result
}

func discoverMessageLists(root gjson.Result) []discoveredList {
	if lists := recognizeEnvelope(root); len(lists) > 0 {
		return lists
	}
	var lists []discoveredList
	walkForMessageLists(root, "", 0, &lists)
	return lists
}

// recognizeEnvelope matches the closed set of known document shapes:
// a message array at the root, a message array under a known key, or
// conversation wrappers each holding a message array.
func recognizeEnvelope(root gjson.Result) []discoveredList {
	if root.IsArray() {
		if items := root.Array(); isMessageList(items) {
			return []discoveredList{{path: "", items: items}}
		}
		return nil
	}
	if !root.IsObject() {
		return nil
	}

	for _, key := range messageListKeys {
		v := root.Get(key)
		if v.IsArray() {
			if items := v.Array(); isMessageList(items) {
				return []discoveredList{{path: key, items: items}}
			}
		}
	}

	for _, wrapperKey := range wrapperKeys {
		wrapper := root.Get(wrapperKey)
		if !wrapper.IsArray() {
			continue
		}
		var lists []discoveredList
		for i, elem := range wrapper.Array() {
			if !elem.IsObject() {
				continue
			}
			for _, key := range messageListKeys {
				v := elem.Get(key)
				if !v.IsArray() {
					continue
				}
				if items := v.Array(); isMessageList(items) {
					lists = append(lists, discoveredList{
						path:  fmt.Sprintf("%s[%d].%s", wrapperKey, i, key),
						items: items,
					})
				}
			}
		}
		if len(lists) > 0 {
			return lists
		}
	}
	return nil
}

// walkForMessageLists is the generic fallback: descend into nested
// objects and into elements of arrays-of-objects, collecting arrays
// under allow-listed keys that hold message-shaped objects.
func walkForMessageLists(value gjson.Result, path string, depth int, out *[]discoveredList) {
	if depth > maxDiscoveryDepth {
		return
	}

	if value.IsArray() {
		for i, elem := range value.Array() {
			if elem.IsObject() {
				walkForMessageLists(elem, fmt.Sprintf("%s[%d]", path, i), depth+1, out)
			}
		}
		return
	}
	if !value.IsObject() {
		return
	}

	value.ForEach(func(key, val gjson.Result) bool {
		childPath := key.String()
		if path != "" {
			childPath = path + "." + key.String()
		}
		if val.IsArray() && keyAllowed(key.String()) {
			if items := val.Array(); isMessageList(items) {
				*out = append(*out, discoveredList{path: childPath, items: items})
				return true
			}
		}
		walkForMessageLists(val, childPath, depth+1, out)
		return true
	})
}

func keyAllowed(key string) bool {
	lowered := strings.ToLower(key)
	for _, allowed := range messageListKeys {
		if lowered == allowed {
			return true
		}
	}
	return false
}

// isMessageList reports whether items is a non-empty array of objects
// with at least one message-shaped element.
func isMessageList(items []gjson.Result) bool {
	if len(items) == 0 {
		return false
	}
	hasMessage := false
	for _, item := range items {
		if !item.IsObject() {
			return false
		}
		if isMessageObject(item) {
			hasMessage = true
		}
	}
	return hasMessage
}

func isMessageObject(item gjson.Result) bool {
	return contentFromItem(item) != ""
}

func contentFromItem(item gjson.Result) string {
	for _, key := range contentKeys {
		if text := contentFromValue(item.Get(key)); text != "" {
			return text
		}
	}
	return ""
}

// contentFromValue tolerates the content field being a plain string,
// an object with nested text, or an array of typed parts.
func contentFromValue(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return strings.TrimSpace(v.String())
	case v.IsObject():
		for _, key := range []string{"text", "content", "value"} {
			nested := v.Get(key)
			if nested.Type == gjson.String && strings.TrimSpace(nested.String()) != "" {
				return strings.TrimSpace(nested.String())
			}
		}
	case v.IsArray():
		var parts []string
		for _, elem := range v.Array() {
			if text := contentFromValue(elem); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// messageFromItem validates and normalizes one candidate element.
func (a *ChatsAdapter) messageFromItem(item gjson.Result, now time.Time) (Message, bool) {
	content := contentFromItem(item)
	if content == "" {
		return Message{}, false
	}

	role := RoleUser
	for _, key := range roleKeys {
		v := item.Get(key)
		if v.Type == gjson.String && v.String() != "" {
			role = NormalizeRole(v.String())
			break
		}
	}

	timestamp := now
	for _, key := range timestampKeys {
		v := item.Get(key)
		if !v.Exists() {
			continue
		}
		if parsed := ParseTimestamp(v.Value(), now); !parsed.Equal(now) {
			timestamp = parsed
			break
		}
	}

	model := ""
	for _, key := range modelKeys {
		v := item.Get(key)
		if v.Type == gjson.String && v.String() != "" {
			model = v.String()
			break
		}
	}

	return Message{
		Timestamp:    timestamp,
		Role:         role,
		Content:      TruncateContent(content, MaxContentLen),
		Model:        model,
		RelatedFiles: ExtractFileReferences(content),
	}, true
}
