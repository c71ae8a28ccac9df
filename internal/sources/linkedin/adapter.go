// LinkedIn has no public API worth using, so this adapter drives a headless
// browser against the guest job search. Selectors come in fallback chains
// because the markup shifts between logged-out variants.
package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-jobradar-automation/internal/jobs"
	"go-jobradar-automation/utils"
)

type Adapter struct {
	page       playwright.Page
	screenshot *utils.ScreenshotDebugger
}

func New(page playwright.Page) *Adapter {
	return &Adapter{
		page:       page,
		screenshot: utils.NewScreenshotDebugger(),
	}
}

func (a *Adapter) Name() string {
	return "LinkedIn"
}

// timeFilterParam maps our time filter onto LinkedIn's f_TPR values.
func timeFilterParam(tf jobs.TimeFilter) string {
	switch tf {
	case jobs.TimeDay:
		return "r86400"
	case jobs.TimeWeek:
		return "r604800"
	default:
		return "r2592000" //past month
	}
}

func (a *Adapter) Extract(ctx context.Context, q jobs.Query) ([]jobs.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("keywords", q.Keyword)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("f_TPR", timeFilterParam(q.TimeFilter))
	params.Set("refresh", "true")
	searchURL := "https://www.linkedin.com/jobs/search/?" + params.Encode()

	log.Printf("  🌐 LinkedIn: visiting %s", searchURL)
	if _, err := a.page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return nil, fmt.Errorf("failed to load job search page: %w", err)
	}

	//authwall or challenge page means we are blocked, not that zero jobs exist
	title, _ := a.page.Title()
	currentURL := a.page.URL()
	if strings.Contains(currentURL, "authwall") || strings.Contains(title, "Sign Up") || strings.Contains(title, "Security Verification") {
		a.screenshot.CaptureAndLog(a.page, "linkedin-authwall", "🚨 LinkedIn: blocked by authwall/challenge")
		return nil, fmt.Errorf("blocked by authwall")
	}

	//human behavior before touching the list
	utils.RandomDelay(1000, 2000)
	utils.MouseJiggle(a.page)
	utils.SmoothScroll(a.page)

	if _, err := a.page.WaitForSelector("ul.jobs-search__results-list li, .job-card-container", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(15000),
	}); err != nil {
		//no cards at all: empty result, not an error
		log.Println("    ℹ️ LinkedIn: job list not found or empty")
		return nil, nil
	}

	cards, err := a.page.Locator("ul.jobs-search__results-list li").All()
	if len(cards) == 0 {
		//fallback for the logged-in layout
		cards, err = a.page.Locator("li.scaffold-layout__list-item, .job-card-container").All()
	}
	if err != nil {
		return nil, fmt.Errorf("error finding job cards: %w", err)
	}
	log.Printf("    📄 LinkedIn: found %d cards", len(cards))

	limit := q.Limit
	if limit <= 0 || limit > len(cards) {
		limit = len(cards)
	}

	var records []jobs.Record
	for _, card := range cards {
		if len(records) >= limit {
			break
		}

		titleEl := card.Locator("h3.base-search-card__title, a.job-card-container__link").First()
		jobTitle, _ := titleEl.TextContent()
		jobTitle = strings.TrimSpace(jobTitle)
		if jobTitle == "" {
			continue
		}

		linkEl := card.Locator("a.base-card__full-link, a.job-card-container__link").First()
		href, _ := linkEl.GetAttribute("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = "https://www.linkedin.com" + href
		}
		//LinkedIn URLs carry tracking params (?refId=..., ?trackingId=...)
		//that make the same job look like different URLs; strip them so the
		//canonical URL dedups
		if i := strings.Index(href, "?"); i >= 0 {
			href = href[:i]
		}

		company, _ := card.Locator("h4.base-search-card__subtitle, .company-name, a.hidden-nested-link").First().TextContent()
		location, _ := card.Locator(".job-search-card__location, .job-card-container__metadata-item").First().TextContent()

		postedDate := ""
		dateEl := card.Locator("time").First()
		if count, _ := dateEl.Count(); count > 0 {
			if dt, err := dateEl.GetAttribute("datetime"); err == nil && dt != "" {
				postedDate = dt
			}
		}

		records = append(records, jobs.Record{
			Title:      jobTitle,
			Company:    strings.TrimSpace(company),
			Location:   strings.TrimSpace(location),
			PostedDate: postedDate,
			URL:        href,
		})
	}

	return records, nil
}
