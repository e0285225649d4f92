/*
Package accdocssync updates the descriptions of files in Autodesk Construction Cloud (ACC) Docs
from a spreadsheet of file names and descriptions.

acc-docs-sync signs in to Autodesk Platform Services with an OAuth2 authorization code flow,
loads the files in an ACC Docs folder (selected by browsing hubs, projects and folders or by
pasting the folder URL from the ACC web UI) and matches them by name against the rows of an
.xlsx, .tsv or Google Sheets spreadsheet. Matched files have the description of their latest
version set to the spreadsheet description.

acc-docs-sync supports the following commands:

  - sign-in, to sign in to Autodesk Platform Services and cache the access token
  - sign-out, to discard the cached access token
  - hubs, projects and folders, to browse the hubs, projects and folder tree
  - files, to list the files in a folder with their current descriptions
  - inspect, to display how a spreadsheet will be read
  - get, to extract the file name/description table from a spreadsheet to a TSV file
  - sync, to update the descriptions of the files in a folder
  - authorise, to authorise access to Google Sheets spreadsheets
*/
package accdocssync
