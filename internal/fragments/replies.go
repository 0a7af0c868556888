package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const repliesTemplate = `// ===== GMAIL REPLY DETECTION =====
const PROCESSED_LABEL = 'processed-reply';

function setupGmailReplyTrigger() {
  removeTriggers('processGmailReplies');
  ScriptApp.newTrigger('processGmailReplies')
    .timeBased()
    .everyMinutes(5)
    .create();
  Logger.log('Gmail reply trigger set up (every 5 minutes)');
}

function setupSheetChangeTrigger() {
  removeTriggers('onSheetEdit');
  ScriptApp.newTrigger('onSheetEdit')
    .forSpreadsheet({{ .Storage }}())
    .onChange()
    .create();
  Logger.log('Spreadsheet change trigger set up');
}

function onSheetEdit(e) {
  processGmailReplies();
}

/**
 * Run once after deployment to register every reply-detection trigger.
 */
function setupAllTriggers() {
  setupGmailReplyTrigger();
  setupSheetChangeTrigger();
  Logger.log('All triggers set up');
}

// gmail.com and googlemail.com deliver to the same mailbox.
function emailAliases(email) {
  const parts = normalizeEmail(email).split('@');
  if (parts.length !== 2) {
    return [normalizeEmail(email)];
  }
  if (parts[1] === 'gmail.com') {
    return [parts[0] + '@gmail.com', parts[0] + '@googlemail.com'];
  }
  if (parts[1] === 'googlemail.com') {
    return [parts[0] + '@googlemail.com', parts[0] + '@gmail.com'];
  }
  return [parts.join('@')];
}

function replySearchQuery(email) {
  const from = emailAliases(email).map(function(address) {
    return 'from:' + address;
  });
  return '(' + from.join(' OR ') + ') -label:' + PROCESSED_LABEL;
}

function processedLabel() {
  return GmailApp.getUserLabelByName(PROCESSED_LABEL) || GmailApp.createLabel(PROCESSED_LABEL);
}

/**
 * Looks for replies from pending subscribers. A reply verifies the
 * subscriber, sends the welcome email and labels the thread.
 */
function processGmailReplies() {
  const sheet = initializeSheet();
  const data = sheet.getDataRange().getValues();
  let verified = 0;

  for (let i = 1; i < data.length; i++) {
    const email = normalizeEmail(data[i][1]);
    if (!email || (data[i][5] || 'pending') !== 'pending') {
      continue;
    }
    try {
      const threads = GmailApp.search(replySearchQuery(email), 0, 5);
      if (threads.length === 0) {
        continue;
      }
      updateSubscriberStatus(email, 'verified');
      sendWelcomeEmail(email, data[i][2] || '');
      const label = processedLabel();
      threads.forEach(function(thread) {
        thread.addLabel(label);
      });
      logEvent({ event: 'REPLY_VERIFIED', details: email, status: 'SUCCESS' });
      verified++;
    } catch (error) {
      Logger.log('Reply check failed for ' + email + ': ' + error);
    }
  }

  Logger.log('Reply scan complete: ' + verified + ' subscriber(s) verified');
  return verified;
}

function testGmailAccess() {
  const threads = GmailApp.search('in:inbox', 0, 1);
  Logger.log('Gmail access OK, inbox has ' + threads.length + ' recent thread(s)');
  return true;
}

// Run from the editor to grant the Gmail scopes the triggers need.
function forceGmailAuth() {
  GmailApp.getInboxUnreadCount();
  Logger.log('Gmail authorization granted');
}
`

const repliesStub = `// ===== GMAIL REPLY DETECTION (disabled) =====
function setupAllTriggers() {
  Logger.log('Gmail reply detection is disabled; no triggers to set up');
}

function processGmailReplies() {
  Logger.log('Gmail reply detection is disabled');
  return 0;
}
`

var repliesTmpl = parse("replies", repliesTemplate)

// ReplyDetection emits the Gmail reply scanner and its triggers.
func ReplyDetection(b config.Brand) Fragment {
	f := Fragment{
		Name:     "replies",
		Provides: []string{"setupAllTriggers", "processGmailReplies"},
	}
	if !b.Gmail {
		f.Text = repliesStub
		return f
	}
	f.Live = true
	f.Text = render(repliesTmpl, b)
	f.Requires = []string{
		StorageAccessor(b),
		"removeTriggers",
		"initializeSheet",
		"normalizeEmail",
		"updateSubscriberStatus",
		"sendWelcomeEmail",
		"logEvent",
	}
	return f
}
