package fragments

import "github.com/ziadkadry99/newsletter-kit/internal/config"

const storageTemplate = `// ===== SPREADSHEET STORAGE =====
const SUBSCRIBER_HEADERS = ['Timestamp', 'Email', 'Name', 'Token', 'Source', 'Status', 'Verified Date'];
const EVENT_LOG_HEADERS = ['Timestamp', 'Event', 'Details', 'Status'];
{{ if .AutoProvision }}
/**
 * Returns the subscriber spreadsheet, creating and formatting it on first
 * run. The new spreadsheet's id is saved as NEWSLETTER_SHEET_ID.
 */
function getOrCreateSpreadsheet() {
  const props = PropertiesService.getScriptProperties();
  const sheetId = CONFIG.SHEET_ID || props.getProperty('NEWSLETTER_SHEET_ID');
  if (sheetId) {
    try {
      return SpreadsheetApp.openById(sheetId);
    } catch (error) {
      Logger.log('Spreadsheet ' + sheetId + ' is not available, creating a new one: ' + error);
    }
  }

  const ss = SpreadsheetApp.create(CONFIG.BRAND_NAME + ' - Newsletter Subscribers');
  const sheet = ss.getSheets()[0];
  sheet.setName(CONFIG.SHEET_NAME);
  writeHeader(sheet, SUBSCRIBER_HEADERS, '#4285f4');
  writeHeader(ss.insertSheet(CONFIG.EVENT_LOG_SHEET), EVENT_LOG_HEADERS, '#4285f4');
  props.setProperty('NEWSLETTER_SHEET_ID', ss.getId());
  Logger.log('Created subscriber spreadsheet: ' + ss.getUrl());
  return ss;
}
{{ else }}
/**
 * Returns the subscriber spreadsheet: CONFIG.SHEET_ID, then the spreadsheet
 * this script is bound to, then the SPREADSHEET_ID script property.
 */
function getSpreadsheet() {
  if (CONFIG.SHEET_ID) {
    return SpreadsheetApp.openById(CONFIG.SHEET_ID);
  }
  const active = SpreadsheetApp.getActiveSpreadsheet();
  if (active) {
    return active;
  }
  const sheetId = PropertiesService.getScriptProperties().getProperty('SPREADSHEET_ID');
  if (sheetId) {
    return SpreadsheetApp.openById(sheetId);
  }
  throw new Error('No spreadsheet found. Set CONFIG.SHEET_ID or the SPREADSHEET_ID script property.');
}
{{ end }}
function writeHeader(sheet, headers, color) {
  sheet.getRange(1, 1, 1, headers.length)
    .setValues([headers])
    .setFontWeight('bold')
    .setBackground(color)
    .setFontColor('#ffffff');
  sheet.setFrozenRows(1);
}

function getOrMakeSheet(name, headers, color) {
  const ss = {{ .Storage }}();
  let sheet = ss.getSheetByName(name);
  if (!sheet) {
    sheet = ss.insertSheet(name);
  }
  if (sheet.getLastRow() === 0) {
    writeHeader(sheet, headers, color || '#4285f4');
  }
  return sheet;
}

function initializeSheet() {
  return getOrMakeSheet(CONFIG.SHEET_NAME, SUBSCRIBER_HEADERS);
}

function logEvent(data) {
  try {
    const sheet = getOrMakeSheet(CONFIG.EVENT_LOG_SHEET, EVENT_LOG_HEADERS);
    sheet.appendRow([new Date(), data.event || '', data.details || '', data.status || '']);
  } catch (error) {
    Logger.log('Could not log event: ' + error);
  }
}

function addToSheet(email, name, token, source, status) {
  const sheet = initializeSheet();
  sheet.appendRow([new Date(), email, name || '', token || '', source || '', status || 'pending', '']);
}

/**
 * Sets the status of the row whose email matches, ignoring case. Marking a
 * row verified also stamps the Verified Date column.
 */
function updateSubscriberStatus(email, status) {
  const sheet = initializeSheet();
  const data = sheet.getDataRange().getValues();
  const target = normalizeEmail(email);
  for (let i = 1; i < data.length; i++) {
    if (normalizeEmail(data[i][1]) === target) {
      sheet.getRange(i + 1, 6).setValue(status);
      if (status === 'verified') {
        sheet.getRange(i + 1, 7).setValue(new Date());
      }
      return true;
    }
  }
  return false;
}

function emailExists(email) {
  const data = initializeSheet().getDataRange().getValues();
  const target = normalizeEmail(email);
  for (let i = 1; i < data.length; i++) {
    if (normalizeEmail(data[i][1]) === target) {
      return true;
    }
  }
  return false;
}

function getSpreadsheetUrl() {
  return {{ .Storage }}().getUrl();
}

function normalizeEmail(email) {
  return String(email || '').trim().toLowerCase();
}

function isValidEmail(email) {
  return /^[^\s@]+@[^\s@]+\.[^\s@]+$/.test(String(email || ''));
}
`

var storageTmpl = parse("storage", storageTemplate)

// Storage emits the spreadsheet layer. The accessor it defines depends on
// whether a sheet id was supplied; every other fragment calls the same one.
func Storage(b config.Brand) Fragment {
	return Fragment{
		Name: "storage",
		Live: true,
		Text: render(storageTmpl, b),
		Provides: []string{
			StorageAccessor(b),
			"writeHeader",
			"getOrMakeSheet",
			"initializeSheet",
			"logEvent",
			"addToSheet",
			"updateSubscriberStatus",
			"emailExists",
			"getSpreadsheetUrl",
			"normalizeEmail",
			"isValidEmail",
		},
		Requires: []string{"CONFIG"},
	}
}
