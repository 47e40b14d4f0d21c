package telephony

import (
	"context"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/observability/metrics"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

const (
	mainMenuGreeting = "Hi! Tell me what you need. For general purpose information, press one. For more specific informations, press 2. For speaking with an agent press 3."
	mainMenuRepeat   = "Can I help you with something else? Press one for general purpose and two for more specific."
	generalPrompt    = "For general informations, you may state your question now"
	specificPrompt   = "For ByteMe insurance informations, you may state your question now"
	fallbackReply    = "Sorry, I didn't get a reply"
	agentNotice      = "An agent will be with you shortly. Keep the call open to not loose your priority!"
	smsNotice        = "You will receive a SMS regarding your request shortly."
)

var smsRe = regexp.MustCompile(`(?i)\bsms\b`)

// backend is the slice of the assistant API the call tree uses.
type backend interface {
	Answer(ctx context.Context, callSid, text string) (string, error)
	AnswerWithDocs(ctx context.Context, callSid, text, collection string, k int) (string, error)
	StopCall(ctx context.Context, callSid, callerNumber string) error
}

// smsSender sends the form link to the caller. Optional.
type smsSender interface {
	SendFormLink(ctx context.Context, to string) error
}

// Handler serves the Twilio voice webhooks.
type Handler struct {
	sessions      *Sessions
	backend       backend
	sms           smsSender
	metrics       *metrics.AssistantMetrics
	logger        *logging.Logger
	collection    string
	k             int
	holdMusicURL  string
}

// Config carries the handler collaborators and settings.
type Config struct {
	Sessions     *Sessions
	Backend      backend
	SMS          smsSender
	Metrics      *metrics.AssistantMetrics
	Logger       *logging.Logger
	Collection   string
	K            int
	HoldMusicURL string
}

// NewHandler creates the voice webhook handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessions(0)
	}
	k := cfg.K
	if k <= 0 {
		k = 3
	}
	return &Handler{
		sessions:     sessions,
		backend:      cfg.Backend,
		sms:          cfg.SMS,
		metrics:      cfg.Metrics,
		logger:       logger,
		collection:   cfg.Collection,
		k:            k,
		holdMusicURL: cfg.HoldMusicURL,
	}
}

// Routes mounts the webhook tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.RootFallback)
	r.Post("/voice", h.Voice)
	r.Post("/handle-intent-general", h.IntentGeneral)
	r.Post("/handle-intent-specific", h.IntentSpecific)
	r.Post("/message", h.Message)
	r.Post("/human-escalation-message", h.HumanEscalationMessage)
	r.Post("/human-escalation-music", h.HumanEscalationMusic)
	r.Post("/partial", h.Partial)
	r.Post("/call-status", h.CallStatus)
	return r
}

// RootFallback answers when Twilio is pointed at / instead of /voice.
func (h *Handler) RootFallback(w http.ResponseWriter, r *http.Request) {
	resp := &Response{}
	resp.Append(Say{Text: "Missing /voice path."})
	h.writeTwiML(w, resp, "root")
}

// Voice is the main menu. Digits route to an intent; otherwise the caller is
// prompted.
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	callSid := r.PostFormValue("CallSid")
	h.sessions.ResetPrompt(callSid)

	resp := &Response{}
	switch r.PostFormValue("Digits") {
	case "1":
		resp.Append(Redirect{URL: "/handle-intent-general"})
		h.writeTwiML(w, resp, "voice")
		return
	case "2":
		resp.Append(Redirect{URL: "/handle-intent-specific"})
		h.writeTwiML(w, resp, "voice")
		return
	case "3":
		resp.Append(Redirect{URL: "/human-escalation-message"})
		h.writeTwiML(w, resp, "voice")
		return
	}

	gather := Gather{
		Input:                 "dtmf",
		Timeout:               "5",
		NumDigits:             "1",
		SpeechTimeout:         "auto",
		PartialResultCallback: "/partial",
	}
	if h.sessions.FirstContact(callSid) {
		gather.Verbs = append(gather.Verbs, Say{Text: mainMenuGreeting})
	} else {
		gather.Verbs = append(gather.Verbs, Say{Text: mainMenuRepeat})
	}
	resp.Append(gather)
	resp.Append(Say{Text: "Sorry, I didn't catch that."})
	h.writeTwiML(w, resp, "voice")
}

// IntentGeneral forwards caller speech to the general Q/A endpoint.
func (h *Handler) IntentGeneral(w http.ResponseWriter, r *http.Request) {
	h.handleIntent(w, r, "general", generalPrompt, func(ctx context.Context, callSid, speech string) (string, error) {
		return h.backend.Answer(ctx, callSid, speech)
	})
}

// IntentSpecific forwards caller speech to the document-grounded endpoint. A
// reply mentioning an SMS reroutes the caller to the form-link message.
func (h *Handler) IntentSpecific(w http.ResponseWriter, r *http.Request) {
	callSid := r.PostFormValue("CallSid")
	speech := r.PostFormValue("SpeechResult")

	reply := ""
	if speech != "" {
		var err error
		reply, err = h.backend.AnswerWithDocs(r.Context(), callSid, speech, h.collection, h.k)
		if err != nil {
			h.logger.Error("backend rsp_db failed", "error", err, "call_sid", callSid)
			reply = fallbackReply
		}
		if smsRe.MatchString(reply) {
			resp := &Response{}
			resp.Append(Redirect{URL: "/message"})
			h.writeTwiML(w, resp, "intent_specific")
			return
		}
	}

	h.speakIntentReply(w, callSid, "intent_specific", specificPrompt, speech, reply)
}

func (h *Handler) handleIntent(w http.ResponseWriter, r *http.Request, route, prompt string, ask func(context.Context, string, string) (string, error)) {
	callSid := r.PostFormValue("CallSid")
	speech := r.PostFormValue("SpeechResult")

	reply := ""
	if speech != "" {
		var err error
		reply, err = ask(r.Context(), callSid, speech)
		if err != nil {
			h.logger.Error("backend rsp failed", "error", err, "call_sid", callSid)
			reply = fallbackReply
		}
	}

	h.speakIntentReply(w, callSid, "intent_"+route, prompt, speech, reply)
}

// speakIntentReply prompts for the question on first entry, then speaks the
// backend reply and loops back to the main menu.
func (h *Handler) speakIntentReply(w http.ResponseWriter, callSid, route, prompt, speech, reply string) {
	var message string
	if h.sessions.FirstPrompt(callSid) && speech == "" {
		message = prompt
	} else {
		if reply == "" {
			reply = fallbackReply
		}
		message = reply + ". Do you need anything else? If not, you will be redirected shortly to the main menu"
	}

	gather := Gather{
		Input:                 "dtmf speech",
		Timeout:               "5",
		SpeechTimeout:         "auto",
		PartialResultCallback: "/partial",
	}
	gather.Verbs = append(gather.Verbs, Say{Text: message})

	resp := &Response{}
	resp.Append(gather)
	resp.Append(Redirect{Method: http.MethodPost, URL: "/voice"})
	h.writeTwiML(w, resp, route)
}

// Message tells the caller a form link is on its way, sends it when an SMS
// sender is configured, and ends the call.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	resp := &Response{}
	resp.Append(Say{Text: smsNotice})
	resp.Append(Hangup{})

	if h.sms != nil {
		if err := h.sms.SendFormLink(r.Context(), r.PostFormValue("From")); err != nil {
			h.logger.Error("send form link failed", "error", err)
		}
	}
	h.writeTwiML(w, resp, "message")
}

// HumanEscalationMessage parks the caller for an agent.
func (h *Handler) HumanEscalationMessage(w http.ResponseWriter, r *http.Request) {
	resp := &Response{}
	resp.Append(Say{Text: agentNotice})
	resp.Append(Redirect{URL: "/human-escalation-music"})
	h.writeTwiML(w, resp, "escalation_message")
}

// HumanEscalationMusic plays hold music and loops back to the agent notice.
func (h *Handler) HumanEscalationMusic(w http.ResponseWriter, r *http.Request) {
	resp := &Response{}
	if h.holdMusicURL != "" {
		resp.Append(Play{URL: h.holdMusicURL, Loop: 3})
	} else {
		resp.Append(Pause{Length: 10})
	}
	resp.Append(Redirect{URL: "/human-escalation-message"})
	h.writeTwiML(w, resp, "escalation_music")
}

// Partial receives partial speech results. They are only logged.
func (h *Handler) Partial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		h.logger.Debug("partial result", "call_sid", r.PostFormValue("CallSid"), "speech", r.PostFormValue("UnstableSpeechResult"))
	}
	w.WriteHeader(http.StatusNoContent)
}

// CallStatus is Twilio's status callback. A completed call closes the
// backend conversation and drops the session.
func (h *Handler) CallStatus(w http.ResponseWriter, r *http.Request) {
	callSid := r.PostFormValue("CallSid")
	status := r.PostFormValue("CallStatus")
	from := r.PostFormValue("From")

	h.logger.Info("call status", "call_sid", callSid, "status", status, "duration", r.PostFormValue("CallDuration"), "from", from)

	if status == "completed" && h.backend != nil {
		if err := h.backend.StopCall(r.Context(), callSid, from); err != nil {
			h.logger.Error("forward end-of-call failed", "error", err, "call_sid", callSid)
		}
	}
	h.sessions.End(callSid)
	h.metrics.ObserveWebhook("call_status", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeTwiML(w http.ResponseWriter, resp *Response, route string) {
	body, err := resp.Render()
	if err != nil {
		h.logger.Error("render twiml failed", "error", err, "route", route)
		h.metrics.ObserveWebhook(route, "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveWebhook(route, "ok")
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}
