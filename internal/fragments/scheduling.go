package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const schedulingTemplate = `// ===== NEWSLETTER SENDING & SCHEDULING =====

/**
 * Sends one issue to every active or verified subscriber. A failed send is
 * logged and counted; it never stops the run.
 */
function sendNewsletter(subject, content) {
  const data = initializeSheet().getDataRange().getValues();
  const htmlContent = getEmailTemplate(content);
  const result = { sent: 0, failed: 0 };

  for (let i = 1; i < data.length; i++) {
    const email = normalizeEmail(data[i][1]);
    const status = data[i][5];
    if (!email || (status !== 'active' && status !== 'verified')) {
      continue;
    }
    try {
      sendEmail(email, subject, htmlContent);
      result.sent++;
    } catch (error) {
      result.failed++;
      Logger.log('Failed to send newsletter to ' + email + ': ' + error);
    }
    if (CONFIG.WARMUP_MODE) {
      Utilities.sleep(CONFIG.WARMUP_DELAY_MS);
    }
  }

  logEvent({
    event: 'NEWSLETTER_SENT',
    details: subject + ' (sent: ' + result.sent + ', failed: ' + result.failed + ')',
    status: result.failed === 0 ? 'SUCCESS' : 'PARTIAL'
  });
  Logger.log('Newsletter sent: ' + result.sent + ' delivered, ' + result.failed + ' failed');
  return result;
}

function scheduledNewsletterSend() {
  let content = generateAIContent();
  if (!content) {
    content = '<h2>Hello from ' + escapeHtml(CONFIG.BRAND_NAME) + '</h2>' +
      '<p>Replace this placeholder with this issue&#039;s content, or add a GEMINI_API_KEY to generate it automatically.</p>';
  }
  return sendNewsletter(CONFIG.BRAND_NAME + ' Newsletter', content);
}

function removeTriggers(handler) {
  ScriptApp.getProjectTriggers().forEach(function(trigger) {
    if (trigger.getHandlerFunction() === handler) {
      ScriptApp.deleteTrigger(trigger);
    }
  });
}

/**
 * Registers scheduledNewsletterSend according to CONFIG.FREQUENCY: daily,
 * weekly, biweekly or monthly. Other labels are treated as weekly.
 */
function setupNewsletterSchedule() {
  removeTriggers('scheduledNewsletterSend');
  const builder = ScriptApp.newTrigger('scheduledNewsletterSend').timeBased();
  const frequency = String(CONFIG.FREQUENCY || '').toLowerCase();

  if (frequency === 'daily') {
    builder.everyDays(1).atHour(9);
  } else if (frequency === 'biweekly') {
    builder.everyWeeks(2).onWeekDay(ScriptApp.WeekDay.MONDAY).atHour(9);
  } else if (frequency === 'monthly') {
    builder.onMonthDay(1).atHour(9);
  } else {
    builder.everyWeeks(1).onWeekDay(ScriptApp.WeekDay.MONDAY).atHour(9);
  }
  builder.create();
  Logger.log('Newsletter scheduled: ' + (frequency || 'weekly'));
}
`

// Scheduling emits the bulk sender, the scheduled entry point and the
// trigger helpers shared with reply detection.
func Scheduling(b config.Brand) Fragment {
	return Fragment{
		Name: "scheduling",
		Live: true,
		Text: schedulingTemplate,
		Provides: []string{
			"sendNewsletter",
			"scheduledNewsletterSend",
			"removeTriggers",
			"setupNewsletterSchedule",
		},
		Requires: []string{
			"CONFIG",
			"initializeSheet",
			"normalizeEmail",
			"getEmailTemplate",
			"escapeHtml",
			"sendEmail",
			"logEvent",
			"generateAIContent",
		},
	}
}
