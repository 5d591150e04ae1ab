package dialogue

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/labease/labease-platform/internal/booking"
	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/extract"
	observemetrics "github.com/labease/labease-platform/internal/observability/metrics"
	"github.com/labease/labease-platform/internal/retrieval"
	"github.com/labease/labease-platform/pkg/logging"
)

// Intent routes are checked in order; the first match wins. Word
// boundaries keep short keywords like "hi" from firing inside other
// words.
var (
	bookingRE  = regexp.MustCompile(`\b(?:book|booking|schedule|appointment)\b`)
	cancelRE   = regexp.MustCompile(`\b(?:cancel|stop|abort|never mind|start over)\b`)
	greetingRE = regexp.MustCompile(`\b(?:hello|hi|hey|greetings)\b`)
	priceRE    = regexp.MustCompile(`\b(?:price|prices|cost|costs|expensive|cheap|cheapest|affordable|how much)\b`)
	symptomRE  = regexp.MustCompile(`\b(?:symptom|symptoms|feel|feeling|pain|recommend|suggest|should i take)\b`)
	testRE     = regexp.MustCompile(`\b(?:test|tests|do you have)\b`)
	labRE      = regexp.MustCompile(`\b(?:lab|labs|laboratory|where|location|near me)\b`)
	helpRE     = regexp.MustCompile(`\b(?:help|how|what can|what do|guide)\b`)
)

// Appointments default to this hour the next day when the patient
// gives no time at all.
const defaultAppointmentHour = 10

// ChatLogger records each turn for audit. Implementations must not
// block the conversation; failures are logged and ignored.
type ChatLogger interface {
	LogTurn(ctx context.Context, sessionID, userMessage, botResponse string, stage Stage) error
}

// Engine drives the booking conversation. Each session moves through
// test selection, contact details and appointment time, ending in a
// confirmed booking. All other intents are answered statelessly from
// the catalog.
type Engine struct {
	sessions  SessionStore
	retrieval *retrieval.Service
	catalog   catalog.Repository
	bookings  *booking.Service
	extractor extract.DetailExtractor
	chatlog   ChatLogger
	metrics   *observemetrics.ChatMetrics
	logger    *logging.Logger

	now func() time.Time
}

// NewEngine wires up the conversation engine. chatlog and metrics may
// be nil.
func NewEngine(sessions SessionStore, rs *retrieval.Service, repo catalog.Repository, bookings *booking.Service, chatlog ChatLogger, metrics *observemetrics.ChatMetrics, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		sessions:  sessions,
		retrieval: rs,
		catalog:   repo,
		bookings:  bookings,
		extractor: extract.RegexDetailExtractor{},
		chatlog:   chatlog,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Respond handles one user turn. Turns for the same session are
// serialized through the session lock, so two tabs can't advance the
// same booking at once.
func (e *Engine) Respond(ctx context.Context, sessionID, message string) (StageResult, error) {
	release, err := e.sessions.Lock(ctx, sessionID)
	if err != nil {
		return StageResult{}, fmt.Errorf("dialogue: lock session: %w", err)
	}
	defer release()

	start := e.now()
	res, err := e.respond(ctx, sessionID, message)
	if err != nil {
		e.metrics.ObserveTurn(string(StageIdle), "error")
		return StageResult{}, err
	}
	e.metrics.ObserveTurn(string(res.Stage), "ok")
	e.metrics.ObserveTurnLatency(string(res.Stage), time.Since(start).Seconds())
	if res.Stage == StageBooked {
		e.metrics.ObserveBooking("chat")
	}
	e.logTurn(ctx, sessionID, message, res)
	return res, nil
}

func (e *Engine) respond(ctx context.Context, sessionID, message string) (StageResult, error) {
	sel, err := e.sessions.GetSelectedTest(ctx, sessionID)
	if err != nil {
		return StageResult{}, err
	}
	det, err := e.sessions.GetDetails(ctx, sessionID)
	if err != nil {
		return StageResult{}, err
	}

	// Details without a selected test means the test key expired
	// under the patient. Reset rather than booking the wrong thing.
	if sel == nil && det != nil {
		if err := e.sessions.Clear(ctx, sessionID); err != nil {
			return StageResult{}, err
		}
		return StageResult{
			Stage:       StageExpired,
			Message:     sessionExpiredMessage(),
			Suggestions: bookingSuggestions(),
		}, nil
	}

	lower := strings.ToLower(message)
	if sel != nil {
		if cancelRE.MatchString(lower) {
			if err := e.sessions.Clear(ctx, sessionID); err != nil {
				return StageResult{}, err
			}
			return StageResult{
				Stage:       StageCancelled,
				Message:     cancelledFlowMessage(),
				Suggestions: bookingSuggestions(),
			}, nil
		}
		if det == nil {
			return e.collectDetails(ctx, sessionID, *sel, message)
		}
		return e.finalize(ctx, sessionID, *sel, *det, message)
	}

	return e.route(ctx, sessionID, message, lower)
}

// route answers an out-of-flow message, or starts the booking flow.
func (e *Engine) route(ctx context.Context, sessionID, message, lower string) (StageResult, error) {
	switch {
	case bookingRE.MatchString(lower):
		return e.startBooking(ctx, sessionID, message)
	case greetingRE.MatchString(lower):
		return e.withDefaultSuggestions(ctx, StageIdle, greetingResponse())
	case priceRE.MatchString(lower):
		return e.answerPrices(ctx, message)
	case symptomRE.MatchString(lower):
		return e.answerSymptoms(ctx, message)
	case testRE.MatchString(lower):
		return e.answerTests(ctx, message)
	case labRE.MatchString(lower):
		return e.answerLabs(ctx, message)
	case helpRE.MatchString(lower):
		return e.withDefaultSuggestions(ctx, StageIdle, helpResponse())
	}
	return e.fallback(ctx, message)
}

// startBooking resolves which test the patient wants, either named
// directly or inferred from symptoms. When the same message already
// carries the contact details, the flow skips straight past them.
func (e *Engine) startBooking(ctx context.Context, sessionID, message string) (StageResult, error) {
	all, err := e.catalog.ListTests(ctx)
	if err != nil {
		return StageResult{}, err
	}
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}

	fields := e.extractor.Details(message, e.now())
	if name := extract.TestName(message, names); name != "" {
		for _, t := range all {
			if strings.EqualFold(t.Name, name) {
				return e.selectTest(ctx, sessionID, t, fields)
			}
		}
	}

	matches, err := e.retrieval.TestsForSymptoms(ctx, message)
	if err != nil {
		return StageResult{}, err
	}
	if len(matches) > 0 && fields.HasContact() {
		return e.selectTest(ctx, sessionID, matches[0], fields)
	}
	if len(matches) > 1 {
		return StageResult{
			Stage:       StageIdle,
			Message:     pickTestResponse(matches),
			Suggestions: bookingSuggestions(),
		}, nil
	}
	if len(matches) == 1 {
		return e.selectTest(ctx, sessionID, matches[0], fields)
	}

	// The user named a test we don't carry. Offer alternatives
	// instead of the generic prompt, without advancing state.
	if namesUnknownTest(message) {
		alternatives, err := e.catalog.PricedTests(ctx, 5)
		if err != nil {
			return StageResult{}, err
		}
		if len(alternatives) == 0 {
			alternatives = all
			if len(alternatives) > 5 {
				alternatives = alternatives[:5]
			}
		}
		return StageResult{
			Stage:       StageIdle,
			Message:     unknownTestResponse(alternatives),
			Suggestions: bookingSuggestions(),
		}, nil
	}
	return StageResult{
		Stage:       StageIdle,
		Message:     bookingPromptMessage(),
		Suggestions: bookingSuggestions(),
	}, nil
}

// bookingFiller are words that carry no test name information in a
// booking request.
var bookingFiller = map[string]struct{}{
	"book": {}, "booking": {}, "schedule": {}, "appointment": {},
	"i": {}, "want": {}, "to": {}, "need": {}, "a": {}, "an": {}, "the": {},
	"test": {}, "tests": {}, "please": {}, "can": {}, "you": {}, "for": {},
	"me": {}, "my": {},
}

// namesUnknownTest reports whether a booking message carries words
// that look like a test name we failed to resolve.
func namesUnknownTest(message string) bool {
	for _, tok := range strings.Fields(strings.ToLower(message)) {
		tok = strings.Trim(tok, ".,!?")
		if _, filler := bookingFiller[tok]; !filler && tok != "" {
			return true
		}
	}
	return false
}

func (e *Engine) selectTest(ctx context.Context, sessionID string, t catalog.Test, fields extract.Fields) (StageResult, error) {
	sel := SelectedTest{TestID: t.ID, TestName: t.Name}
	if err := e.sessions.SetSelectedTest(ctx, sessionID, sel); err != nil {
		return StageResult{}, err
	}
	if fields.HasContact() {
		return e.saveDetails(ctx, sessionID, sel, fields)
	}
	return StageResult{
		Stage:       StageTestSelected,
		Message:     testSelectedMessage(t.Name),
		Suggestions: bookingSuggestions(),
	}, nil
}

func (e *Engine) collectDetails(ctx context.Context, sessionID string, sel SelectedTest, message string) (StageResult, error) {
	fields := e.extractor.Details(message, e.now())
	if !fields.HasContact() {
		return StageResult{
			Stage:       StageTestSelected,
			Message:     detailsRepromptMessage(sel.TestName),
			Suggestions: bookingSuggestions(),
		}, nil
	}
	return e.saveDetails(ctx, sessionID, sel, fields)
}

// saveDetails resolves the lab for the selected test and persists it
// with the contact details. A test no lab offers ends the flow here,
// before the patient is asked for a time.
func (e *Engine) saveDetails(ctx context.Context, sessionID string, sel SelectedTest, fields extract.Fields) (StageResult, error) {
	labs, err := e.retrieval.LabsForTest(ctx, sel.TestID)
	if err != nil {
		return StageResult{}, err
	}
	if len(labs) == 0 {
		return e.resetNoLab(ctx, sessionID, sel.TestName)
	}
	lab := labs[0]

	d := Details{
		Name:    fields.PersonName,
		Email:   fields.Email,
		Phone:   fields.Phone,
		When:    fields.When,
		LabID:   lab.ID,
		LabName: lab.Name,
	}
	if err := e.sessions.SetDetails(ctx, sessionID, d); err != nil {
		return StageResult{}, err
	}
	return StageResult{
		Stage:       StageDetailsCollected,
		Message:     detailsConfirmedMessage(d.Name, sel.TestName),
		Suggestions: timeSuggestions(),
	}, nil
}

// finalize books the appointment and ends the flow.
func (e *Engine) finalize(ctx context.Context, sessionID string, sel SelectedTest, det Details, message string) (StageResult, error) {
	at := extract.When(message, e.now())
	if at == nil {
		at = det.When
	}
	if at == nil {
		t := e.defaultAppointment()
		at = &t
	}

	// The lab was resolved when the details were saved. Older session
	// entries without one get a fresh lookup.
	labID, labName := det.LabID, det.LabName
	if labID == 0 {
		labs, err := e.retrieval.LabsForTest(ctx, sel.TestID)
		if err != nil {
			return StageResult{}, err
		}
		if len(labs) == 0 {
			return e.resetNoLab(ctx, sessionID, sel.TestName)
		}
		labID, labName = labs[0].ID, labs[0].Name
	}

	b, err := e.bookings.Create(ctx, booking.CreateRequest{
		PatientName: det.Name,
		Email:       det.Email,
		Phone:       det.Phone,
		TestID:      sel.TestID,
		LabID:       labID,
		Appointment: *at,
	})
	if err != nil {
		// The offering can disappear between saving details and
		// booking. Reset instead of stranding the session.
		if errors.Is(err, booking.ErrNotOffered) {
			return e.resetNoLab(ctx, sessionID, sel.TestName)
		}
		return StageResult{}, fmt.Errorf("dialogue: create booking: %w", err)
	}
	if err := e.sessions.Clear(ctx, sessionID); err != nil {
		return StageResult{}, err
	}

	return StageResult{
		Stage:   StageBooked,
		Message: bookingConfirmedMessage(b.Code, sel.TestName, labName, e.effectivePrice(ctx, labID, sel.TestID), b.Appointment),
		Suggestions: []string{
			"Check booking status",
			"Book another test",
			"Find labs near me",
		},
	}, nil
}

// resetNoLab clears the session and tells the patient no lab carries
// the test.
func (e *Engine) resetNoLab(ctx context.Context, sessionID, testName string) (StageResult, error) {
	if err := e.sessions.Clear(ctx, sessionID); err != nil {
		return StageResult{}, err
	}
	return e.withDefaultSuggestions(ctx, StageIdle, noLabMessage(testName))
}

func (e *Engine) defaultAppointment() time.Time {
	d := e.now().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), defaultAppointmentHour, 0, 0, 0, d.Location())
}

func (e *Engine) effectivePrice(ctx context.Context, labID, testID int64) string {
	test, err := e.catalog.GetTest(ctx, testID)
	if err != nil {
		return "Contact lab for rates"
	}
	off, err := e.catalog.GetOffering(ctx, labID, testID)
	if err != nil {
		return priceLabel(*test)
	}
	if p := off.PriceFor(test); p != nil {
		return "Rs. " + p.StringFixed(2)
	}
	return "Contact lab for rates"
}

func (e *Engine) answerPrices(ctx context.Context, message string) (StageResult, error) {
	tests, err := e.retrieval.TestsByPrice(ctx, message)
	if err != nil {
		return StageResult{}, err
	}
	if len(tests) == 0 {
		return StageResult{Stage: StageIdle, Message: noPricesResponse(), Suggestions: bookingSuggestions()}, nil
	}
	return StageResult{
		Stage:       StageIdle,
		Message:     priceQueryResponse(tests),
		Suggestions: priceSuggestions(tests),
	}, nil
}

func (e *Engine) answerSymptoms(ctx context.Context, message string) (StageResult, error) {
	tests, err := e.retrieval.TestsForSymptoms(ctx, message)
	if err != nil {
		return StageResult{}, err
	}
	if len(tests) == 0 {
		return e.withDefaultSuggestions(ctx, StageIdle, noSymptomMatchResponse())
	}
	infos, err := e.testInfos(ctx, tests)
	if err != nil {
		return StageResult{}, err
	}
	return StageResult{
		Stage:       StageIdle,
		Message:     symptomQueryResponse(infos),
		Suggestions: testSuggestions(tests),
	}, nil
}

func (e *Engine) answerTests(ctx context.Context, message string) (StageResult, error) {
	tests, err := e.retrieval.Tests(ctx, message, retrieval.DefaultLimit)
	if err != nil {
		return StageResult{}, err
	}
	if len(tests) == 0 {
		popular, err := e.catalog.PricedTests(ctx, 5)
		if err != nil {
			return StageResult{}, err
		}
		return e.withDefaultSuggestions(ctx, StageIdle, noTestsResponse(popular))
	}
	infos, err := e.testInfos(ctx, tests)
	if err != nil {
		return StageResult{}, err
	}
	return StageResult{
		Stage:       StageIdle,
		Message:     testQueryResponse(infos),
		Suggestions: testSuggestions(tests),
	}, nil
}

func (e *Engine) answerLabs(ctx context.Context, message string) (StageResult, error) {
	labs, err := e.retrieval.Labs(ctx, message, retrieval.DefaultLimit)
	if err != nil {
		return StageResult{}, err
	}
	if len(labs) == 0 {
		return e.withDefaultSuggestions(ctx, StageIdle, noLabsResponse())
	}
	infos := make([]retrieval.LabInfo, len(labs))
	for i, l := range labs {
		infos[i] = e.retrieval.LabInfo(l)
	}
	return StageResult{
		Stage:       StageIdle,
		Message:     labQueryResponse(infos),
		Suggestions: bookingSuggestions(),
	}, nil
}

func (e *Engine) fallback(ctx context.Context, message string) (StageResult, error) {
	tests, err := e.retrieval.Tests(ctx, message, 5)
	if err != nil {
		return StageResult{}, err
	}
	var labInfos []retrieval.LabInfo
	if len(tests) == 0 {
		labs, err := e.retrieval.Labs(ctx, message, 5)
		if err != nil {
			return StageResult{}, err
		}
		for _, l := range labs {
			labInfos = append(labInfos, e.retrieval.LabInfo(l))
		}
	}
	return e.withDefaultSuggestions(ctx, StageIdle, fallbackResponse(tests, labInfos))
}

func (e *Engine) withDefaultSuggestions(ctx context.Context, stage Stage, message string) (StageResult, error) {
	tests, err := e.catalog.ListTests(ctx)
	if err != nil {
		return StageResult{}, err
	}
	return StageResult{
		Stage:       stage,
		Message:     message,
		Suggestions: defaultSuggestions(tests),
	}, nil
}

func (e *Engine) testInfos(ctx context.Context, tests []catalog.Test) ([]retrieval.TestInfo, error) {
	infos := make([]retrieval.TestInfo, len(tests))
	for i, t := range tests {
		info, err := e.retrieval.TestInfo(ctx, t)
		if err != nil {
			return nil, err
		}
		infos[i] = info
	}
	return infos, nil
}

func (e *Engine) logTurn(ctx context.Context, sessionID, message string, res StageResult) {
	if e.chatlog == nil {
		return
	}
	if err := e.chatlog.LogTurn(ctx, sessionID, message, res.Message, res.Stage); err != nil {
		e.logger.Warn("chat turn not logged", "session_id", sessionID, "error", err)
	}
}
